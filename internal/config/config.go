package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Render    RenderConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	SubmitPerHour int
	StatusPerMin  int
	ColorsPerMin  int
}

type RenderConfig struct {
	FFmpegPath  string
	Width       int
	Height      int
	FPS         int
	HWAccel     string
	FontsDir    string
	OutputDir   string
	Concurrency int
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "3000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.submit_per_hour", 10)
	viper.SetDefault("ratelimit.status_per_min", 120)
	viper.SetDefault("ratelimit.colors_per_min", 30)
	viper.SetDefault("render.ffmpeg_path", "ffmpeg")
	viper.SetDefault("render.width", 1920)
	viper.SetDefault("render.height", 1080)
	viper.SetDefault("render.fps", 60)
	viper.SetDefault("render.hwaccel", "none")
	viper.SetDefault("render.fonts_dir", "./fonts")
	viper.SetDefault("render.output_dir", "./output")
	viper.SetDefault("render.concurrency", 1)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			SubmitPerHour: viper.GetInt("ratelimit.submit_per_hour"),
			StatusPerMin:  viper.GetInt("ratelimit.status_per_min"),
			ColorsPerMin:  viper.GetInt("ratelimit.colors_per_min"),
		},
		Render: RenderConfig{
			FFmpegPath:  viper.GetString("render.ffmpeg_path"),
			Width:       viper.GetInt("render.width"),
			Height:      viper.GetInt("render.height"),
			FPS:         viper.GetInt("render.fps"),
			HWAccel:     viper.GetString("render.hwaccel"),
			FontsDir:    viper.GetString("render.fonts_dir"),
			OutputDir:   viper.GetString("render.output_dir"),
			Concurrency: viper.GetInt("render.concurrency"),
		},
	}

	return cfg, nil
}
