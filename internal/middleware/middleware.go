package middleware

import (
	"net/http"
	"strconv"

	"github.com/meridianhomes/homechat/internal/handlers"
	"github.com/meridianhomes/homechat/internal/metrics"
	"github.com/meridianhomes/homechat/pkg/applog"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *applog.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

var ChatHandler = Wrap(handlers.ChatHandler)
var ClearHandler = Wrap(handlers.ClearHandler)
var HealthHandler = Wrap(handlers.HealthHandler)
var SuggestionsHandler = Wrap(handlers.SuggestionsHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = applog.NewLogger("middleware")
	re.logger.Debug("New request received")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re = rateLimiter(re)
	return re
}
