package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/Brownie44l1/waste-api/internal/chat"
	"github.com/Brownie44l1/waste-api/internal/disposal"
	"github.com/Brownie44l1/waste-api/internal/model"
	"github.com/Brownie44l1/waste-api/internal/preprocess"
)

// Replier answers one chat message.
type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

// Handler serves the classification and chat endpoints. The classifier is
// built once at startup and shared read-only by every request.
type Handler struct {
	classifier *model.Classifier
	chat       Replier
	metrics    *Metrics
	maxUpload  int64
	logger     *slog.Logger
}

func NewHandler(classifier *model.Classifier, replier Replier, metrics *Metrics, maxUpload int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		classifier: classifier,
		chat:       replier,
		metrics:    metrics,
		maxUpload:  maxUpload,
		logger:     logger,
	}
}

// Routes returns the full handler tree with CORS, request logging and
// metrics applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/classify", h.Classify)
	mux.HandleFunc("/chat", h.Chat)
	mux.Handle("/metrics", h.metrics.Handler())

	return h.withRequestLog(enableCORS(mux))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"model":  h.classifier.Kind(),
	})
}

type classifyRequest struct {
	Image string `json:"image"`
}

// Classify accepts either a multipart upload in the "image" field or a JSON
// body {"image": "<base64 or data URL>"}.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	logger := loggerFrom(r.Context(), h.logger)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	data, err := h.readImage(r, logger)
	if err != nil {
		writeError(w, requestStatus(err), err.Error())
		return
	}

	tensor, err := preprocess.FromBytes(data)
	if err != nil {
		logger.Info("rejected upload", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pred, err := h.classifier.Classify(tensor)
	if err != nil {
		logger.Error("classification failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	category := string(pred.Category)
	h.metrics.ObserveClassification(category)
	logger.Info("classified", "category", category, "confidence", pred.Confidence)

	writeJSON(w, http.StatusOK, model.ClassifyResponse{
		Category:             category,
		Confidence:           pred.Confidence,
		DisposalInstructions: disposal.Instructions(category),
	})
}

func (h *Handler) readImage(r *http.Request, logger *slog.Logger) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, err
			}
			return nil, badRequestf("Failed to parse form: %v", err)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			if _, ok := r.MultipartForm.Value["image"]; ok {
				return nil, errNoFile
			}
			return nil, errNoImage
		}
		defer file.Close()

		logger.Debug("received file", "filename", header.Filename, "size", header.Size)
		return io.ReadAll(file)
	}

	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errNoImage
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, badRequestf("Invalid JSON: %v", err)
	}
	if strings.TrimSpace(req.Image) == "" {
		return nil, errNoImage
	}
	return decodeImageData(req.Image)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat relays {"message"} to the generative model and returns {"response"}.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	logger := loggerFrom(r.Context(), h.logger)

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUpload)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	reply, err := h.chat.Reply(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "No message provided")
			return
		}
		logger.Error("chat failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}
