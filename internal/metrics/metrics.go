package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ValidationRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_validation_rejections_total",
			Help: "Quiz drafts rejected by the validator",
		},
		[]string{"reason"},
	)

	AttemptsGraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_attempts_graded_total",
			Help: "Quiz attempts graded",
		},
	)

	// QuizMutations counts successful writes; op is create, update or delete.
	QuizMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_mutations_total",
			Help: "Successful quiz writes",
		},
		[]string{"op"},
	)
)
