package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/netwatch/internal/alerting"
	"github.com/good-yellow-bee/netwatch/internal/models"
	"github.com/good-yellow-bee/netwatch/internal/thresholds"
)

var (
	classifyThresholdsFile string
	classifyDevice         string
)

var classifyCmd = &cobra.Command{
	Use:   "classify <metric-type> <value>",
	Short: "Classify a sample against thresholds offline",
	Long: `Show the severity a sample would receive without contacting the server.

Thresholds come from --thresholds when given, otherwise the built-in defaults.
Use -- before a negative value so it is not read as a flag.

Examples:
  netwatchctl classify "CPU Usage" 95
  netwatchctl classify --thresholds thresholds.yaml -o json "Signal Quality" 15`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("value %q is not a number", args[1])
		}

		set := thresholds.Defaults()
		if classifyThresholdsFile != "" {
			set, err = thresholds.LoadFromFile(classifyThresholdsFile)
			if err != nil {
				return err
			}
			PrintVerbose("loaded %d thresholds from %s", len(set), classifyThresholdsFile)
		}
		store, err := thresholds.NewStore(set...)
		if err != nil {
			return err
		}

		sample := models.MetricSample{
			MetricType: args[0],
			DeviceID:   classifyDevice,
			Value:      value,
			ObservedAt: time.Now(),
		}
		return writeEvaluation(cmd.OutOrStdout(), GetOutput(), sample, alerting.Evaluate(sample, store))
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyThresholdsFile, "thresholds", "t", "", "thresholds YAML file")
	classifyCmd.Flags().StringVarP(&classifyDevice, "device", "d", "cli", "device id shown in the result")
	rootCmd.AddCommand(classifyCmd)
}

type evaluationResult struct {
	MetricType string            `json:"metric_type"`
	DeviceID   string            `json:"device_id"`
	Value      float64           `json:"value"`
	Severity   models.Severity   `json:"severity"`
	Level      *float64          `json:"level,omitempty"`
	Threshold  *models.Threshold `json:"threshold,omitempty"`
}

func writeEvaluation(w io.Writer, format string, sample models.MetricSample, eval alerting.Evaluation) error {
	res := evaluationResult{
		MetricType: sample.MetricType,
		DeviceID:   sample.DeviceID,
		Value:      sample.Value,
		Severity:   eval.Severity,
		Level:      eval.Level,
	}
	if eval.Threshold.MetricType != "" {
		t := eval.Threshold
		res.Threshold = &t
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(w, "%-16s %s\n", "metric:", res.MetricType)
	fmt.Fprintf(w, "%-16s %s\n", "device:", res.DeviceID)
	fmt.Fprintf(w, "%-16s %s\n", "value:", strconv.FormatFloat(res.Value, 'f', -1, 64))
	fmt.Fprintf(w, "%-16s %s\n", "severity:", res.Severity)
	switch {
	case res.Threshold == nil:
		fmt.Fprintf(w, "%-16s %s\n", "threshold:", "none configured or disabled")
	default:
		fmt.Fprintf(w, "%-16s warning %s, critical %s (%s)\n", "threshold:",
			strconv.FormatFloat(res.Threshold.WarningLevel, 'f', -1, 64),
			strconv.FormatFloat(res.Threshold.CriticalLevel, 'f', -1, 64),
			res.Threshold.Direction)
	}
	return nil
}
