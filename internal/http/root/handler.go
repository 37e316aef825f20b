package root

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/hola-starter/internal/platform/logging"
)

// Register wires the root route into the provided API.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-root",
		Method:      http.MethodGet,
		Path:        Path,
		Summary:     "Greeting",
		Description: "Returns a fixed plain-text greeting.",
	}, getHandler)
}

func getHandler(ctx context.Context, _ *struct{}) (*GetOutput, error) {
	applog.LogInfo(ctx, "root get", zap.String("path", Path))
	return &GetOutput{ContentType: contentTypeText, Body: []byte(Greeting)}, nil
}
