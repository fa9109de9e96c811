package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName string `env:"APP_NAME" envDefault:"Virtual Clothing Try-On"`
	Port    string `env:"PORT" envDefault:"8080"`

	BodyLimitInMB    int    `env:"BODY_LIMIT_IN_MB" envDefault:"32"`
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	StaticDir        string `env:"STATIC_DIR" envDefault:"./static"`

	RateLimitMaxRequests   int `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
	RateLimitDurationInSec int `env:"RATE_LIMIT_DURATION_IN_SEC" envDefault:"5"`

	GeminiAPIKey     string `env:"GEMINI_API_KEY,required"`
	GeminiImageModel string `env:"GEMINI_IMAGE_MODEL" envDefault:"gemini-2.5-flash-image-preview"`
	GeminiBaseURL    string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`

	// yolo runs the bundled ONNX model in-process, remote delegates to an
	// external inference service
	DetectorBackend string `env:"DETECTOR_BACKEND" envDefault:"yolo"`
	YoloModelPath   string `env:"YOLO_MODEL_PATH" envDefault:"./models/yolov8m.onnx"`
	InferenceURL    string `env:"INFERENCE_URL"`

	RequestTimeoutInSec   int `env:"REQUEST_TIMEOUT_IN_SEC" envDefault:"300"`
	DetectTimeoutInSec    int `env:"DETECT_TIMEOUT_IN_SEC" envDefault:"30"`
	GenerateTimeoutInSec  int `env:"GENERATE_TIMEOUT_IN_SEC" envDefault:"120"`
	RecommendTimeoutInSec int `env:"RECOMMEND_TIMEOUT_IN_SEC" envDefault:"60"`

	CacheTTLInMin int `env:"CACHE_TTL_IN_MIN" envDefault:"60"`

	// optional sinks, enabled by presence
	ResultsS3Bucket string `env:"RESULTS_S3_BUCKET"`
	S3Region        string `env:"S3_REGION"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3Endpoint      string `env:"S3_ENDPOINT"`

	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"tryon"`
}

func New() *Config {
	_ = godotenv.Load()

	conf := &Config{}

	if err := env.Parse(conf); err != nil {
		slog.Error(err.Error())

		panic("Failed to parse config")
	}

	return conf
}

func (c *Config) RateLimitDuration() time.Duration {
	return time.Duration(c.RateLimitDurationInSec) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutInSec) * time.Second
}

func (c *Config) DetectTimeout() time.Duration {
	return time.Duration(c.DetectTimeoutInSec) * time.Second
}

func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.GenerateTimeoutInSec) * time.Second
}

func (c *Config) RecommendTimeout() time.Duration {
	return time.Duration(c.RecommendTimeoutInSec) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLInMin) * time.Minute
}
