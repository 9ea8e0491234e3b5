package googleembedding

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/meridianhomes/homechat/pkg/applog"
)

func isRetryable(err error, log *applog.Logger) bool {
	if s, ok := status.FromError(err); ok {
		if s.Code() == codes.ResourceExhausted {
			log.Warn("Rate limit hit", "error", err)
			return true
		}
	}
	return false
}
