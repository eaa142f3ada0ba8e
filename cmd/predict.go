package cmd

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"cancerscope/inference"
	"cancerscope/locale"
	"cancerscope/ml"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Classify samples from the command line",
	Long: "Classify one sample given with --features, or every row of a CSV file given with --file.\n" +
		"A CSV header naming the 30 features selects columns by name, so extra columns such as id are ignored.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPredict(cmd)
	},
}

func init() {
	predictCmd.Flags().String("model", inference.RandomForest.Slug(), "Model to use (random_forest, svm, voting_ensemble)")
	predictCmd.Flags().String("features", "", "Comma separated values of the 30 features in canonical order")
	predictCmd.Flags().String("file", "", "CSV file with one sample per row, or - for stdin")
	predictCmd.Flags().Bool("json", false, "Print one JSON result per line")
	predictCmd.MarkFlagsMutuallyExclusive("features", "file")
	predictCmd.MarkFlagsOneRequired("features", "file")
}

func runPredict(cmd *cobra.Command) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	modelName, _ := cmd.Flags().GetString("model")
	model, err := inference.ParseModel(modelName)
	if err != nil {
		return err
	}

	var samples [][]float64
	if list, _ := cmd.Flags().GetString("features"); list != "" {
		values, err := parseFeatureList(list)
		if err != nil {
			return err
		}
		samples = append(samples, values)
	} else {
		file, _ := cmd.Flags().GetString("file")
		var r io.Reader = cmd.InOrStdin()
		if file != "-" {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		samples, err = readSamples(r)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
	}

	orchestrator, err := inference.Load(cfg.Artifacts.Paths())
	if err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()
	encoder := json.NewEncoder(out)
	tag := uiLanguage(cfg)
	for i, values := range samples {
		result, err := orchestrator.Predict(values, model)
		if err != nil {
			if len(samples) > 1 {
				return fmt.Errorf("sample %d: %w", i+1, err)
			}
			return err
		}
		if asJSON {
			if err := encoder.Encode(result); err != nil {
				return err
			}
			continue
		}
		if len(samples) > 1 {
			fmt.Fprintf(out, "#%d\n", i+1)
		}
		printResult(out, tag, result)
	}
	return nil
}

func printResult(w io.Writer, tag language.Tag, result inference.Result) {
	p := locale.Printer(tag)
	headline := locale.ResultBenign
	if result.Malignant() {
		headline = locale.ResultMalignant
	}
	p.Fprintln(w, p.Sprintf(headline))
	p.Fprintln(w, p.Sprintf(locale.Probability, result.ConfidencePercent))
	p.Fprintln(w, p.Sprintf(locale.ModelUsed, result.ModelName))
}

func parseFeatureList(list string) ([]float64, error) {
	fields := strings.Split(list, ",")
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i+1, err)
		}
		values[i] = v
	}
	return values, nil
}

// readSamples reads CSV rows. When the first row is a header, columns are
// picked by canonical feature name; otherwise every row must hold the values
// in canonical order.
func readSamples(r io.Reader) ([][]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("no samples")
	}

	var columns []int
	if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][0]), 64); err != nil {
		columns, err = headerColumns(rows[0])
		if err != nil {
			return nil, err
		}
		rows = rows[1:]
	}

	samples := make([][]float64, 0, len(rows))
	for i, row := range rows {
		fields := row
		if columns != nil {
			fields = make([]string, len(columns))
			for j, c := range columns {
				if c >= len(row) {
					return nil, fmt.Errorf("row %d: missing column %s", i+1, ml.FeatureNames()[j])
				}
				fields[j] = row[c]
			}
		}
		values, err := parseFeatureList(strings.Join(fields, ","))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		samples = append(samples, values)
	}
	if len(samples) == 0 {
		return nil, errors.New("no samples")
	}
	return samples, nil
}

func headerColumns(header []string) ([]int, error) {
	columns := make([]int, ml.FeatureCount)
	for j := range columns {
		columns[j] = -1
	}
	for i, name := range header {
		if j, ok := ml.FeatureIndex(strings.TrimSpace(name)); ok {
			columns[j] = i
		}
	}
	for j, c := range columns {
		if c < 0 {
			return nil, fmt.Errorf("header is missing column %q", ml.FeatureNames()[j])
		}
	}
	return columns, nil
}
