// Package monitoring 提供预测服务的运行指标
package monitoring

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType 指标类型
type MetricType string

const (
	MetricTypeCounter MetricType = "counter"
	MetricTypeGauge   MetricType = "gauge"
)

// ModelStat 单个模型的预测统计
type ModelStat struct {
	Model        string        `json:"model"`
	Requests     int64         `json:"requests"`
	Benign       int64         `json:"benign"`
	Malignant    int64         `json:"malignant"`
	Errors       int64         `json:"errors"`
	TotalLatency time.Duration `json:"total_latency_ns"`
	MaxLatency   time.Duration `json:"max_latency_ns"`
}

// AverageLatency 平均耗时
func (s ModelStat) AverageLatency() time.Duration {
	if s.Requests == 0 {
		return 0
	}
	return s.TotalLatency / time.Duration(s.Requests)
}

// Snapshot 指标快照
type Snapshot struct {
	Uptime string           `json:"uptime"`
	Models []ModelStat      `json:"models"`
	Errors map[string]int64 `json:"errors"`
	System map[string]any   `json:"system"`
}

// MetricsCollector 指标收集器
type MetricsCollector struct {
	metricsLock sync.RWMutex
	models      map[string]*ModelStat
	errors      map[string]int64

	startTime time.Time
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		models:    make(map[string]*ModelStat),
		errors:    make(map[string]int64),
		startTime: time.Now(),
	}
}

func (mc *MetricsCollector) stat(model string) *ModelStat {
	stat, ok := mc.models[model]
	if !ok {
		stat = &ModelStat{Model: model}
		mc.models[model] = stat
	}
	return stat
}

// RecordPrediction 记录一次成功预测
func (mc *MetricsCollector) RecordPrediction(model string, malignant bool, latency time.Duration) {
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()

	stat := mc.stat(model)
	stat.Requests++
	if malignant {
		stat.Malignant++
	} else {
		stat.Benign++
	}
	stat.TotalLatency += latency
	if latency > stat.MaxLatency {
		stat.MaxLatency = latency
	}
}

// RecordError 记录一次失败预测, kind 为错误类别
func (mc *MetricsCollector) RecordError(model, kind string) {
	mc.metricsLock.Lock()
	defer mc.metricsLock.Unlock()

	if model != "" {
		mc.stat(model).Errors++
	}
	mc.errors[kind]++
}

// Snapshot 返回当前指标副本
func (mc *MetricsCollector) Snapshot() Snapshot {
	mc.metricsLock.RLock()
	defer mc.metricsLock.RUnlock()

	models := make([]ModelStat, 0, len(mc.models))
	for _, stat := range mc.models {
		models = append(models, *stat)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Model < models[j].Model })

	errors := make(map[string]int64, len(mc.errors))
	for kind, count := range mc.errors {
		errors[kind] = count
	}

	return Snapshot{
		Uptime: mc.GetUptime().String(),
		Models: models,
		Errors: errors,
		System: mc.GetSystemStats(),
	}
}

// ExportPrometheus 导出Prometheus格式
func (mc *MetricsCollector) ExportPrometheus() string {
	snapshot := mc.Snapshot()
	var b strings.Builder

	writeHeader := func(name, help string, typ MetricType) {
		fmt.Fprintf(&b, "# HELP %s %s\n", name, help)
		fmt.Fprintf(&b, "# TYPE %s %s\n", name, typ)
	}

	writeHeader("cancerscope_predictions_total", "Predictions served by model and label", MetricTypeCounter)
	for _, stat := range snapshot.Models {
		fmt.Fprintf(&b, "cancerscope_predictions_total{model=%q,label=\"Benign\"} %d\n", stat.Model, stat.Benign)
		fmt.Fprintf(&b, "cancerscope_predictions_total{model=%q,label=\"Malignant\"} %d\n", stat.Model, stat.Malignant)
	}

	writeHeader("cancerscope_prediction_errors_total", "Failed predictions by error kind", MetricTypeCounter)
	kinds := make([]string, 0, len(snapshot.Errors))
	for kind := range snapshot.Errors {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(&b, "cancerscope_prediction_errors_total{kind=%q} %d\n", kind, snapshot.Errors[kind])
	}

	writeHeader("cancerscope_prediction_latency_seconds_avg", "Average prediction latency by model", MetricTypeGauge)
	for _, stat := range snapshot.Models {
		fmt.Fprintf(&b, "cancerscope_prediction_latency_seconds_avg{model=%q} %f\n", stat.Model, stat.AverageLatency().Seconds())
	}

	writeHeader("cancerscope_goroutines", "Number of goroutines", MetricTypeGauge)
	fmt.Fprintf(&b, "cancerscope_goroutines %d\n", runtime.NumGoroutine())

	return b.String()
}

// GetUptime 获取运行时间
func (mc *MetricsCollector) GetUptime() time.Duration {
	return time.Since(mc.startTime)
}

// GetSystemStats 获取系统统计
func (mc *MetricsCollector) GetSystemStats() map[string]any {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]any{
		"goroutines": runtime.NumGoroutine(),
		"memory": map[string]any{
			"alloc":      m.Alloc,
			"sys":        m.Sys,
			"heap_alloc": m.HeapAlloc,
			"heap_inuse": m.HeapInuse,
			"gc_count":   m.NumGC,
		},
		"num_cpu": runtime.NumCPU(),
	}
}
