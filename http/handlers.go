package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"cancerscope/inference"
	"cancerscope/ml"
	"cancerscope/monitoring"
)

//go:embed templates static
var assets embed.FS

// Predictor 预测能力, 由 inference.Orchestrator 实现
type Predictor interface {
	Predict(values []float64, model inference.Model) (inference.Result, error)
}

// API 处理器共享的依赖, 启动时构建后只读
type API struct {
	predictor    Predictor
	metrics      *monitoring.MetricsCollector
	logger       *zap.Logger
	language     language.Tag
	defaultValue float64
}

// APIConfig API配置
type APIConfig struct {
	Language     language.Tag
	DefaultValue float64
}

// NewAPI 创建API
func NewAPI(predictor Predictor, metrics *monitoring.MetricsCollector, logger *zap.Logger, config APIConfig) *API {
	if metrics == nil {
		metrics = monitoring.NewMetricsCollector()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		predictor:    predictor,
		metrics:      metrics,
		logger:       logger,
		language:     config.Language,
		defaultValue: config.DefaultValue,
	}
}

func RegisterHandlers(mux *http.ServeMux, api *API) {
	static, _ := fs.Sub(assets, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	mux.HandleFunc("GET /{$}", api.handleForm)
	mux.HandleFunc("POST /{$}", api.handleFormSubmit)

	mux.HandleFunc("GET /api/health", api.handleHealth)
	mux.HandleFunc("GET /api/features", api.handleFeatures)
	mux.HandleFunc("GET /api/models", api.handleModels)
	mux.HandleFunc("GET /api/metrics", api.handleMetrics)
	mux.HandleFunc("POST /api/predict", api.handlePredict)
	mux.HandleFunc("GET /api/ws/predict", api.handleWebSocket)
}

func (api *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (api *API) handleFeatures(w http.ResponseWriter, r *http.Request) {
	api.respond(w, http.StatusOK, map[string]interface{}{
		"features":      ml.FeatureNames(),
		"count":         ml.FeatureCount,
		"default_value": api.defaultValue,
	})
}

func (api *API) handleModels(w http.ResponseWriter, r *http.Request) {
	type model struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	models := make([]model, 0, len(inference.Models()))
	for _, m := range inference.Models() {
		models = append(models, model{ID: m.Slug(), Name: m.String()})
	}
	api.respond(w, http.StatusOK, map[string]interface{}{"models": models})
}

func (api *API) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "prometheus" {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.Write([]byte(api.metrics.ExportPrometheus()))
		return
	}
	api.respond(w, http.StatusOK, api.metrics.Snapshot())
}

// respond 写入JSON响应, 编码失败时记录日志并返回500
func (api *API) respond(w http.ResponseWriter, status int, v interface{}) {
	if err := writeJSON(w, status, v); err != nil {
		api.logger.Error("write JSON response", zap.Int("status", status), zap.Error(err))
	}
}

// writeJSON 先编码到缓冲区, 失败时不会留下空响应体
func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal server error"}` + "\n"))
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

func writeError(w http.ResponseWriter, status int, message string) {
	_ = writeJSON(w, status, map[string]string{"error": message})
}
