package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	SecretKey         []byte
	DatabaseURL       string
	RedisAddr         string
	PaymentGatewayURL string
	PaymentGatewayKey string
	ServerPort        string
)

func Init() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("no .env file found, reading configuration from environment")
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		logrus.Fatal("JWT secret key not set")
	}
	SecretKey = []byte(secret)

	DatabaseURL = os.Getenv("DATABASE_URL")
	if DatabaseURL == "" {
		logrus.Fatal("DATABASE_URL not set")
	}

	PaymentGatewayURL = os.Getenv("PAYMENT_GATEWAY_URL")
	if PaymentGatewayURL == "" {
		logrus.Fatal("PAYMENT_GATEWAY_URL not set")
	}
	PaymentGatewayKey = os.Getenv("PAYMENT_GATEWAY_KEY")

	RedisAddr = os.Getenv("REDIS_ADDR")
	if RedisAddr == "" {
		RedisAddr = "localhost:6379"
	}

	ServerPort = os.Getenv("SERVER_PORT")
	if ServerPort == "" {
		ServerPort = "8080"
	}
}
