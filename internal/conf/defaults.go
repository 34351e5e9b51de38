package conf

import "github.com/spf13/viper"

// setDefaultConfig registers the default value for every setting so that a
// missing or partial config file never leaves a zero value behind.
func setDefaultConfig() {
	viper.SetDefault("debug", false)
	viper.SetDefault("verbose", false)

	viper.SetDefault("mesh.numprocesses", 0)
	viper.SetDefault("mesh.rotationangle", 90.0)
	viper.SetDefault("mesh.webncell", 10)
	viper.SetDefault("mesh.webplythickness", 0.004)
	viper.SetDefault("mesh.nelem", 0)

	viper.SetDefault("plot.scalar", "material_id")
	viper.SetDefault("plot.width", 1280)
	viper.SetDefault("plot.height", 660)

	viper.SetDefault("anba.env", "anba4-env")

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "runs.db")
}
