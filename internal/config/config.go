package config

import (
	"github.com/spf13/viper"
)

type (
	Config struct {
		Pipeline
		Merge
		Export
	}

	Pipeline struct {
		Parser   string // default clippings parser
		Exporter string // default exporter expression
	}

	Merge struct {
		// NoteTolerance is how many locations past a highlight's end
		// a note may sit and still be associated with it.
		NoteTolerance int
	}

	Export struct {
		DateFormat string // Go time layout for exported datetimes
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("CHOKITTO")
	v.AutomaticEnv()

	v.SetDefault("parser", "kindle")
	v.SetDefault("exporter", "markdown")
	v.SetDefault("merge_note_tolerance", 2)
	v.SetDefault("date_format", "2006-01-02 15:04:05")

	return &Config{
		Pipeline: Pipeline{
			Parser:   v.GetString("PARSER"),
			Exporter: v.GetString("EXPORTER"),
		},
		Merge: Merge{
			NoteTolerance: v.GetInt("MERGE_NOTE_TOLERANCE"),
		},
		Export: Export{
			DateFormat: v.GetString("DATE_FORMAT"),
		},
	}
}
