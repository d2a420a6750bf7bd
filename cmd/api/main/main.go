//go:build lambda
// +build lambda

package main

import (
	"context"
	"os"

	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"github.com/cyphera/cyphera-agentpay/internal/server"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
)

// @title           Cyphera Agent Payments API
// @version         1.0
// @description     Pay-per-item purchases by AI agents holding signed intent mandates.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

var (
	ginLambda *ginadapter.GinLambda
	srv       *server.Server
)

func init() {
	logger.InitLogger(os.Getenv("STAGE"))

	ctx := context.Background()
	cfg, err := server.LoadConfig(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	srv, err = server.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize server", zap.Error(err))
	}

	ginLambda = ginadapter.New(srv.Router())
}

func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.Debug("Received Lambda request",
		zap.String("path", req.Path),
		zap.String("request", spew.Sdump(req)),
	)

	resp, err := ginLambda.ProxyWithContext(ctx, req)
	// The runtime may freeze once the handler returns.
	srv.WaitForNotifications()
	return resp, err
}

func main() {
	defer logger.Sync() //nolint:errcheck
	lambda.Start(Handler)
}
