package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/meridianhomes/homechat/internal/adapter/utils"
	"github.com/meridianhomes/homechat/internal/api"
	"github.com/meridianhomes/homechat/internal/config"
	"github.com/meridianhomes/homechat/internal/domain/chatmodel"
	"github.com/meridianhomes/homechat/internal/domain/chunkmodel"
	"github.com/meridianhomes/homechat/internal/session"
)

// Answerer is the query-side entry point the handlers drive. It never
// fails; refusals and failures come back as assistant turns.
type Answerer interface {
	Answer(ctx context.Context, query chunkmodel.Query, history []chatmodel.Turn) ([]chatmodel.Turn, string)
}

var (
	answerer Answerer
	sessions session.Store
)

// Init wires the handler package before the server starts routing.
func Init(a Answerer, s session.Store) {
	answerer = a
	sessions = s
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

func SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.SuggestionsResponse{Questions: config.QuickQuestions})
}

func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", request.RemoteAddr)
		return
	}

	var requestData api.ChatRequest
	defer closeBody(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !validChatRequest(requestData) {
		logRH.Warn("Bad Chat Request", "error", err, "request data", requestData)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
		return
	}

	chatID := requestData.ChatID
	if chatID == "" {
		chatID = utils.GetNewUUID()
		logRH.Debug("New Chat request", "chatID", chatID)
	}

	ctx := request.Context()
	history, err := sessions.History(ctx, chatID)
	if err != nil {
		logRH.Error("Error loading history", "chatID", chatID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, chatID, "Could not load conversation")
		return
	}

	updated, sources := answerer.Answer(ctx, chunkmodel.Query{
		Text:        requestData.Message,
		TopK:        requestData.TopK,
		WantSources: requestData.WithSources,
	}, history)

	if err := sessions.Append(ctx, chatID, updated[len(history):]...); err != nil {
		logRH.Error("Error saving turns", "chatID", chatID, "error", err)
	}

	writeJsonResponse(w, http.StatusOK, api.ChatResponse{
		ChatID:  chatID,
		Answer:  updated[len(updated)-1].Content,
		Sources: sources,
		History: toTurnResponses(updated),
	})
}

func toTurnResponses(turns []chatmodel.Turn) []api.TurnResponse {
	out := make([]api.TurnResponse, len(turns))
	for i, turn := range turns {
		out[i] = api.TurnResponse{Role: string(turn.Role), Content: turn.Content}
	}
	return out
}

func ClearHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", request.RemoteAddr)
		return
	}

	var requestData api.ClearRequest
	defer closeBody(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || requestData.ChatID == "" {
		logRH.Warn("Bad Clear Request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
		return
	}

	if err := sessions.Clear(request.Context(), requestData.ChatID); err != nil {
		logRH.Error("Error clearing chat", "chatID", requestData.ChatID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, requestData.ChatID, "Could not clear conversation")
		return
	}

	writeJsonResponse(w, http.StatusOK, api.ClearResponse{
		ChatID: requestData.ChatID,
		Status: "cleared",
	})
}

func validChatRequest(requestData api.ChatRequest) bool {
	return strings.TrimSpace(requestData.Message) != ""
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logRH.Error("Couldn't close the request body", "error", err)
	}
}
