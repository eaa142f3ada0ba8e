package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cancerscope/inference"
	"cancerscope/ml"
)

// PredictRequest 预测请求, Features 必须按 /api/features 的顺序给出
type PredictRequest struct {
	Model    string    `json:"model"`
	Features []float64 `json:"features"`
}

// PredictResponse 预测响应
type PredictResponse struct {
	inference.Result
	RequestID string `json:"request_id,omitempty"`
}

// predict 执行预测并记录指标, 返回的状态码用于HTTP和WebSocket
func (api *API) predict(ctx context.Context, req PredictRequest) (inference.Result, int, error) {
	model := inference.RandomForest
	if req.Model != "" {
		parsed, err := inference.ParseModel(req.Model)
		if err != nil {
			api.metrics.RecordError("", "unknown_model")
			return inference.Result{}, http.StatusBadRequest, err
		}
		model = parsed
	}

	start := time.Now()
	result, err := api.predictor.Predict(req.Features, model)
	latency := time.Since(start)
	if err != nil {
		status, kind := classifyError(err)
		api.metrics.RecordError(model.String(), kind)
		api.logger.Warn("prediction failed",
			zap.String("request_id", GetRequestID(ctx)),
			zap.String("model", model.String()),
			zap.String("kind", kind),
			zap.Error(err))
		return inference.Result{}, status, err
	}

	api.metrics.RecordPrediction(result.ModelName, result.Malignant(), latency)
	api.logger.Debug("prediction served",
		zap.String("request_id", GetRequestID(ctx)),
		zap.String("model", result.ModelName),
		zap.String("label", result.Label),
		zap.Float64("confidence_percent", result.ConfidencePercent),
		zap.Duration("latency", latency))
	return result, http.StatusOK, nil
}

func classifyError(err error) (int, string) {
	var shapeErr *ml.InputShapeError
	var capErr *ml.CapabilityUnavailableError
	switch {
	case errors.As(err, &shapeErr):
		return http.StatusBadRequest, "input_shape"
	case errors.As(err, &capErr):
		return http.StatusUnprocessableEntity, "capability_unavailable"
	case errors.Is(err, inference.ErrUnknownModel):
		return http.StatusBadRequest, "unknown_model"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (api *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, status, err := api.predict(r.Context(), req)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	api.respond(w, http.StatusOK, PredictResponse{
		Result:    result,
		RequestID: GetRequestID(r.Context()),
	})
}
