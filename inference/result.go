package inference

const (
	LabelBenign    = "Benign"
	LabelMalignant = "Malignant"
)

// Result is the outcome of a single prediction. ConfidencePercent is the
// probability mass of the predicted class, not of class 1.
type Result struct {
	ClassIndex        int     `json:"class_index"`
	Label             string  `json:"label"`
	ConfidencePercent float64 `json:"confidence_percent"`
	ModelName         string  `json:"model_name"`
}

// Malignant reports whether the predicted class is 1.
func (r Result) Malignant() bool { return r.ClassIndex == 1 }

func labelFor(classIndex int) string {
	if classIndex == 1 {
		return LabelMalignant
	}
	return LabelBenign
}
