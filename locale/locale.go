// Package locale holds the user-visible strings in every supported language.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys double as the English text.
const (
	Title            = "Breast Cancer Prediction"
	Intro            = "This app predicts whether a sample is Malignant (dangerous cancer) or Benign (not dangerous) from 30 medical features."
	ModelSettings    = "Model settings"
	ChooseModel      = "Choose model:"
	InputHeader      = "Diagnosis input"
	InputHint        = "Enter the values of the 30 features:"
	PredictButton    = "Predict"
	ResultHeader     = "Prediction result"
	ResultMalignant  = "Result: Malignant (dangerous cancer)"
	ResultBenign     = "Result: Benign (not dangerous)"
	Probability      = "Probability: %.2f%%"
	ModelUsed        = "Model used: %s"
	InvalidInput     = "Invalid input: %v"
	InvalidNumber    = "%s must be a number"
	PredictionFailed = "Prediction failed: %v"
)

var supported = []language.Tag{
	language.English,
	language.Indonesian,
}

var matcher = language.NewMatcher(supported)

func init() {
	id := language.Indonesian
	for key, msg := range map[string]string{
		Title:            "Prediksi Kanker Payudara",
		Intro:            "Aplikasi ini memprediksi apakah sampel termasuk Malignant (Kanker Berbahaya) atau Benign (Tidak berbahaya) berdasarkan 30 fitur medis.",
		ModelSettings:    "Pengaturan Model",
		ChooseModel:      "Pilih Model:",
		InputHeader:      "Input Data Diagnosis",
		InputHint:        "Masukkan nilai 30 fitur berikut:",
		PredictButton:    "Prediksi",
		ResultHeader:     "Hasil Prediksi",
		ResultMalignant:  "Hasil: Malignant (Kanker Berbahaya)",
		ResultBenign:     "Hasil: Benign (Tidak Berbahaya)",
		Probability:      "Probabilitas: %.2f%%",
		ModelUsed:        "Model yang digunakan: %s",
		InvalidInput:     "Input tidak valid: %v",
		InvalidNumber:    "%s harus berupa angka",
		PredictionFailed: "Prediksi gagal: %v",
	} {
		if err := message.SetString(id, key, msg); err != nil {
			panic(err)
		}
	}
}

// Parse resolves a configured language such as "en" or "id".
func Parse(s string) (language.Tag, bool) {
	tag, err := language.Parse(s)
	if err != nil {
		return language.English, false
	}
	_, index, confidence := matcher.Match(tag)
	if confidence < language.High {
		return language.English, false
	}
	return supported[index], true
}

// Match picks the best supported language for an Accept-Language header,
// falling back to fallback when nothing matches.
func Match(acceptLanguage string, fallback language.Tag) language.Tag {
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	return supported[index]
}

func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}
