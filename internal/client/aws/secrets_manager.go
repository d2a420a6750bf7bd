package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"go.uber.org/zap"
)

// SecretsManagerAPI is the subset of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerClient wraps the AWS Secrets Manager client.
type SecretsManagerClient struct {
	svc    SecretsManagerAPI
	getenv func(string) string
}

// NewSecretsManagerClient creates a Secrets Manager client from an AWS config.
func NewSecretsManagerClient(cfg aws.Config) *SecretsManagerClient {
	return NewSecretsManagerClientWithAPI(secretsmanager.NewFromConfig(cfg))
}

// NewSecretsManagerClientWithAPI wraps an existing Secrets Manager API.
func NewSecretsManagerClientWithAPI(svc SecretsManagerAPI) *SecretsManagerClient {
	return &SecretsManagerClient{svc: svc, getenv: os.Getenv}
}

// GetSecretString fetches a secret string from AWS Secrets Manager using an ARN specified by an environment variable.
// If the ARN environment variable (secretArnEnvVar) is not set or fetching fails,
// it falls back to reading the secret directly from another environment variable (fallbackEnvVar).
// An empty result with no error means neither source is set.
func (c *SecretsManagerClient) GetSecretString(ctx context.Context, secretArnEnvVar string, fallbackEnvVar string) (string, error) {
	secretArn := c.getenv(secretArnEnvVar)

	if secretArn != "" {
		logger.Log.Debug("Attempting to fetch secret from Secrets Manager", zap.String("arnEnvVar", secretArnEnvVar))
		result, err := c.svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(secretArn),
		})
		if err == nil && result.SecretString != nil && *result.SecretString != "" {
			logger.Log.Info("Fetched secret from Secrets Manager", zap.String("arnEnvVar", secretArnEnvVar))
			return *result.SecretString, nil
		}
		logger.Log.Warn("Failed to retrieve secret from Secrets Manager, falling back to env var",
			zap.String("secretArnEnvVar", secretArnEnvVar),
			zap.String("fallbackEnvVar", fallbackEnvVar),
			zap.Error(err),
		)
		if fallback := c.getenv(fallbackEnvVar); fallback != "" {
			return fallback, nil
		}
		if err == nil {
			err = fmt.Errorf("secret is empty")
		}
		return "", fmt.Errorf("secret %s could not be resolved: %w", secretArnEnvVar, err)
	}

	return c.getenv(fallbackEnvVar), nil
}

// DatabaseSecret is the JSON layout of an RDS-managed credentials secret.
type DatabaseSecret struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"dbname"`
}

// DSN returns a postgres connection URL for the secret.
func (s DatabaseSecret) DSN(sslMode string) string {
	if sslMode == "" {
		sslMode = "require"
	}
	port := s.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(s.Username, s.Password),
		Host:     fmt.Sprintf("%s:%d", s.Host, port),
		Path:     "/" + s.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}

// GetSecretJSON fetches a JSON secret by the ARN held in secretArnEnvVar and
// unmarshals it into target. It reports false when the ARN variable is not set.
func (c *SecretsManagerClient) GetSecretJSON(ctx context.Context, secretArnEnvVar string, target interface{}) (bool, error) {
	secretArn := c.getenv(secretArnEnvVar)
	if secretArn == "" {
		return false, nil
	}

	result, err := c.svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretArn),
	})
	if err != nil {
		return true, fmt.Errorf("failed to fetch secret %s: %w", secretArnEnvVar, err)
	}
	if result.SecretString == nil {
		return true, fmt.Errorf("secret %s has no string value", secretArnEnvVar)
	}
	if err := json.Unmarshal([]byte(*result.SecretString), target); err != nil {
		return true, fmt.Errorf("failed to parse secret %s: %w", secretArnEnvVar, err)
	}

	logger.Log.Info("Fetched JSON secret from Secrets Manager", zap.String("arnEnvVar", secretArnEnvVar))
	return true, nil
}
