package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder 记录一次分队计算的结果
type Recorder interface {
	ObserveBuild(numSquads int, generations int, fitness float64, elapsed time.Duration)
	IncBuildFailure(reason string)
}

// Nop 什么都不记录，用于关闭指标或者测试
type Nop struct{}

func (Nop) ObserveBuild(int, int, float64, time.Duration) {}
func (Nop) IncBuildFailure(string)                        {}

var _ Recorder = Nop{}

type Prometheus struct {
	builds        *prometheus.CounterVec
	failures      *prometheus.CounterVec
	generations   prometheus.Histogram
	duration      prometheus.Histogram
	bestFitness   prometheus.Gauge
	lastNumSquads prometheus.Gauge
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus 创建并注册分队相关的指标，reg 为 nil 时使用 prometheus.DefaultRegisterer
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "squad_builder"
	}

	p := &Prometheus{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "builds_total",
			Help:      "Total successful squad builds by number of squads.",
		}, []string{"squads"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "build_failures_total",
			Help:      "Total rejected or failed squad builds by reason.",
		}, []string{"reason"}),
		generations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "generations",
			Help:      "Generations evolved per build.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8), // 10 .. ~160k
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "build_duration_seconds",
			Help:      "Wall-clock duration of squad builds in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		bestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "best_fitness",
			Help:      "Fitness of the best tournament of the last build.",
		}),
		lastNumSquads: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "optimizer",
			Name:      "last_num_squads",
			Help:      "Number of squads requested by the last build.",
		}),
	}

	reg.MustRegister(p.builds, p.failures, p.generations, p.duration, p.bestFitness, p.lastNumSquads)
	return p
}

func (p *Prometheus) ObserveBuild(numSquads int, generations int, fitness float64, elapsed time.Duration) {
	p.builds.WithLabelValues(squadsLabel(numSquads)).Inc()
	p.generations.Observe(float64(generations))
	p.duration.Observe(elapsed.Seconds())
	p.bestFitness.Set(fitness)
	p.lastNumSquads.Set(float64(numSquads))
}

func (p *Prometheus) IncBuildFailure(reason string) {
	p.failures.WithLabelValues(reason).Inc()
}

// 小队数量作为标签时只区分常见取值，避免标签基数失控
func squadsLabel(n int) string {
	if n > 16 {
		return "16+"
	}
	return strconv.Itoa(n)
}
