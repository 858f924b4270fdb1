// internal/config/display.go
package config

import (
	"github.com/spf13/viper"

	"github.com/geohunt/arcoin/pkg/core"
)

// Display assembles the coin display settings from configuration.
func Display() core.DisplaySettings {
	return core.DisplaySettings{
		MaterializationDistance:     viper.GetFloat64("display.materializationDistance"),
		HideDistance:                viper.GetFloat64("display.hideDistance"),
		CollectionDistance:          viper.GetFloat64("display.collectionDistance"),
		MetersPerStep:               viper.GetFloat64("display.metersPerStep"),
		ScaleAtFar:                  viper.GetFloat64("display.scaleAtFar"),
		ScaleAtNear:                 viper.GetFloat64("display.scaleAtNear"),
		FinalMetersForScaleRamp:     viper.GetFloat64("display.finalMetersForScaleRamp"),
		ScaleAtCollectionMultiplier: viper.GetFloat64("display.scaleAtCollectionMultiplier"),
		MaterializeForward:          viper.GetFloat64("display.materializeForward"),
		MaterializeHeight:           viper.GetFloat64("display.materializeHeight"),
		MaterializeSeconds:          viper.GetFloat64("display.materializeSeconds"),
		CollectSeconds:              viper.GetFloat64("display.collectSeconds"),
		IdleSpinDegPerSec:           viper.GetFloat64("display.idleSpinDegPerSec"),
		CollectSpinDegPerSec:        viper.GetFloat64("display.collectSpinDegPerSec"),
	}
}
