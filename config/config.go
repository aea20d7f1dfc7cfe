// Copyright (c) 2025 Meetmind Authors
// Licensed under the Apache License, Version 2.0. See LICENSE for details.
package config

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AppConfig is the application configuration, environment-first with file
// override through ENV_PATH.
type AppConfig struct {
	Name     string `mapstructure:"service_name" validate:"required"`
	Version  string `mapstructure:"version" validate:"required"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required"`
	LogPath  string `mapstructure:"log_path"`

	// DatabasePath locates the sqlite file holding saved recordings.
	DatabasePath string `mapstructure:"database_path" validate:"required"`

	// GeminiApiKey authenticates every AI flow call.
	GeminiApiKey string `mapstructure:"gemini_api_key"`
	// GeminiModel is the model id used for all flows.
	GeminiModel string `mapstructure:"gemini_model" validate:"required"`

	// CaptionEndpoint is the websocket URL of the streaming STT service
	// backing the live-caption side-channel; empty disables captions.
	CaptionEndpoint string `mapstructure:"caption_endpoint"`

	// RecordingLimitSeconds is the hard wall-clock ceiling on one recording.
	RecordingLimitSeconds int `mapstructure:"recording_limit_seconds" validate:"required,min=1"`

	// Capture sample rate / channels for the portaudio device.
	SampleRate int `mapstructure:"sample_rate" validate:"required"`
	Channels   int `mapstructure:"channels" validate:"required,min=1,max=2"`
}

// InitConfig reads configuration from the environment and optional env file.
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	path := os.Getenv("ENV_PATH")
	if path != "" {
		log.Printf("env path %v", path)
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)
	if err := vConfig.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		log.Printf("Reading from env variables.")
	}

	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "meetmind")
	v.SetDefault("VERSION", "0.1.0")
	v.SetDefault("HOST", "127.0.0.1")
	v.SetDefault("PORT", 8787)
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_PATH", "")

	v.SetDefault("DATABASE_PATH", "meetmind.db")

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")

	v.SetDefault("CAPTION_ENDPOINT", "")

	v.SetDefault("RECORDING_LIMIT_SECONDS", 600)
	v.SetDefault("SAMPLE_RATE", 16000)
	v.SetDefault("CHANNELS", 1)
}

// GetApplicationConfig unmarshals and validates the app config.
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(&config); err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}
	return &config, nil
}
