package http

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"cancerscope/inference"
	"cancerscope/locale"
	"cancerscope/ml"
)

// formColumns 表单列数
const formColumns = 3

var pageTemplate = template.Must(template.ParseFS(assets, "templates/index.html"))

type pageText struct {
	Title, Intro, ModelSettings, ChooseModel, InputHeader, InputHint, PredictButton, ResultHeader string
}

type featureField struct {
	Name  string
	Value string
}

type modelOption struct {
	ID       string
	Name     string
	Selected bool
}

type resultView struct {
	Malignant   bool
	Headline    string
	Probability string
	ModelUsed   string
}

type pageData struct {
	Lang    string
	Text    pageText
	Columns [][]featureField
	Models  []modelOption
	Result  *resultView
	Error   string
}

func (api *API) requestLanguage(r *http.Request) language.Tag {
	if tag, ok := locale.Parse(r.URL.Query().Get("lang")); ok {
		return tag
	}
	return locale.Match(r.Header.Get("Accept-Language"), api.language)
}

func (api *API) newPage(tag language.Tag, values []string, selected inference.Model) pageData {
	p := locale.Printer(tag)
	data := pageData{
		Lang: tag.String(),
		Text: pageText{
			Title:         p.Sprintf(locale.Title),
			Intro:         p.Sprintf(locale.Intro),
			ModelSettings: p.Sprintf(locale.ModelSettings),
			ChooseModel:   p.Sprintf(locale.ChooseModel),
			InputHeader:   p.Sprintf(locale.InputHeader),
			InputHint:     p.Sprintf(locale.InputHint),
			PredictButton: p.Sprintf(locale.PredictButton),
			ResultHeader:  p.Sprintf(locale.ResultHeader),
		},
		Columns: make([][]featureField, formColumns),
	}
	for i, name := range ml.FeatureNames() {
		value := formatValue(api.defaultValue)
		if values != nil {
			value = values[i]
		}
		data.Columns[i%formColumns] = append(data.Columns[i%formColumns], featureField{Name: name, Value: value})
	}
	for _, m := range inference.Models() {
		data.Models = append(data.Models, modelOption{ID: m.Slug(), Name: m.String(), Selected: m == selected})
	}
	return data
}

func (api *API) handleForm(w http.ResponseWriter, r *http.Request) {
	api.render(w, http.StatusOK, api.newPage(api.requestLanguage(r), nil, inference.RandomForest))
}

func (api *API) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	tag := api.requestLanguage(r)
	p := locale.Printer(tag)

	if err := r.ParseForm(); err != nil {
		data := api.newPage(tag, nil, inference.RandomForest)
		data.Error = p.Sprintf(locale.InvalidInput, err)
		api.render(w, http.StatusBadRequest, data)
		return
	}

	selected, err := inference.ParseModel(r.PostForm.Get("model"))
	if err != nil {
		selected = inference.RandomForest
	}

	raw, features, fieldErr := api.parseFeatures(r, p)
	data := api.newPage(tag, raw, selected)
	if fieldErr != "" {
		data.Error = p.Sprintf(locale.InvalidInput, fieldErr)
		api.render(w, http.StatusBadRequest, data)
		return
	}

	result, status, err := api.predict(r.Context(), PredictRequest{Model: selected.Slug(), Features: features})
	if err != nil {
		data.Error = p.Sprintf(locale.PredictionFailed, err)
		api.render(w, status, data)
		return
	}

	view := &resultView{
		Malignant:   result.Malignant(),
		Headline:    p.Sprintf(locale.ResultBenign),
		Probability: p.Sprintf(locale.Probability, result.ConfidencePercent),
		ModelUsed:   p.Sprintf(locale.ModelUsed, result.ModelName),
	}
	if view.Malignant {
		view.Headline = p.Sprintf(locale.ResultMalignant)
	}
	data.Result = view
	api.render(w, http.StatusOK, data)
}

// parseFeatures 读取30个输入框, 空值使用默认值
func (api *API) parseFeatures(r *http.Request, p *message.Printer) ([]string, []float64, string) {
	names := ml.FeatureNames()
	raw := make([]string, len(names))
	features := make([]float64, len(names))
	for i, name := range names {
		raw[i] = strings.TrimSpace(r.PostForm.Get(name))
		if raw[i] == "" {
			raw[i] = formatValue(api.defaultValue)
		}
	}
	for i, value := range raw {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return raw, nil, p.Sprintf(locale.InvalidNumber, names[i])
		}
		features[i] = parsed
	}
	return raw, features, ""
}

func (api *API) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		api.logger.Error("render page", zap.Error(err))
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
