package output

import (
	"io"
	"os"

	"github.com/bizlens/bizcalc/internal/domain"
	"gopkg.in/yaml.v3"
)

// GenerateReport renders report in the named format and writes it to w.
func GenerateReport(w io.Writer, report *domain.AnalysisReport, format string) error {
	f, err := LookupFormatter(format)
	if err != nil {
		return err
	}
	data, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// SaveConfiguration writes an analysis file as YAML.
func SaveConfiguration(config *domain.Configuration, filename string) error {
	b, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}
