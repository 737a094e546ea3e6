package metrics

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	apperrors "inscompare/internal/errors"
	"inscompare/internal/reconcile"
	"inscompare/pkg/contracts/domain"
)

const namespace = "inscompare"

// Filter outcome label values
const (
	OutcomeExpired      = "expired"
	OutcomeNotExpired   = "not_expired"
	OutcomeInvalidClass = "invalid_class"
	OutcomePassed       = "passed_filter"
	OutcomeNonObject    = "non_object"
)

// Recorder collects the gauges of one run on a private registry, so the
// result can be written as a node_exporter textfile.
type Recorder struct {
	registry *prometheus.Registry

	CSVCodes      prometheus.Gauge
	JSONEntries   prometheus.Gauge
	FilterEntries *prometheus.GaugeVec
	FilteredIDs   prometheus.Gauge
	Surplus       *prometheus.GaugeVec
	StepDuration  *prometheus.GaugeVec
	LastSuccess   prometheus.Gauge
}

// NewRecorder creates a Recorder with all collectors registered
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		CSVCodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "csv_codes",
			Help:      "Distinct instrument codes read from the CSV export.",
		}),
		JSONEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "json_entries",
			Help:      "Top-level entries in the JSON instrument cache.",
		}),
		FilterEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "filter_entries",
			Help:      "JSON cache entries by filter outcome.",
		}, []string{"outcome"}),
		FilteredIDs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "filtered_ids",
			Help:      "Distinct normalized instrument ids that passed the filter.",
		}),
		Surplus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "surplus_instruments",
			Help:      "Surplus cache keys by exchange.",
		}, []string{"exchange"}),
		StepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time of each pipeline step in the last run.",
		}, []string{"step"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful comparison.",
		}),
	}

	r.registry.MustRegister(
		r.CSVCodes,
		r.JSONEntries,
		r.FilterEntries,
		r.FilteredIDs,
		r.Surplus,
		r.StepDuration,
		r.LastSuccess,
	)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveStep records how long a pipeline step took
func (r *Recorder) ObserveStep(step string, d time.Duration) {
	r.StepDuration.WithLabelValues(step).Set(d.Seconds())
}

// ObserveReconciliation sets every result gauge from rec
func (r *Recorder) ObserveReconciliation(rec *domain.Reconciliation) {
	r.CSVCodes.Set(float64(rec.Codes.Len()))
	r.JSONEntries.Set(float64(rec.Cache.Len()))

	r.FilterEntries.WithLabelValues(OutcomeExpired).Set(float64(rec.Stats.Expired))
	r.FilterEntries.WithLabelValues(OutcomeNotExpired).Set(float64(rec.Stats.NotExpired))
	r.FilterEntries.WithLabelValues(OutcomeInvalidClass).Set(float64(rec.Stats.InvalidClass))
	r.FilterEntries.WithLabelValues(OutcomePassed).Set(float64(rec.Stats.PassedFilter))
	r.FilterEntries.WithLabelValues(OutcomeNonObject).Set(float64(rec.Stats.NonObject))

	r.FilteredIDs.Set(float64(rec.FilteredIDs().Len()))

	r.Surplus.Reset()
	for _, key := range rec.SurplusKeys() {
		r.Surplus.WithLabelValues(reconcile.ExchangeOf(key)).Inc()
	}
}

// MarkSuccess stamps the last-success gauge
func (r *Recorder) MarkSuccess(now time.Time) {
	r.LastSuccess.Set(float64(now.Unix()))
}

// FileStager hands out the file that becomes path when the run's outputs
// are committed
type FileStager interface {
	Create(path string) (*os.File, error)
}

// WriteTextfile writes all gauges in the Prometheus text format to a file
// staged for path, the same encoding prometheus.WriteToTextfile uses.
func (r *Recorder) WriteTextfile(stager FileStager, path string) error {
	families, err := r.registry.Gather()
	if err != nil {
		return apperrors.NewStorageError("failed to gather metrics", err).
			WithContext("path", path)
	}

	file, err := stager.Create(path)
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(file, mf); err != nil {
			file.Close()
			return apperrors.NewStorageError("failed to write metrics textfile", err).
				WithContext("path", path)
		}
	}
	if err := file.Close(); err != nil {
		return apperrors.NewStorageError("failed to close metrics textfile", err).
			WithContext("path", path)
	}
	return nil
}
