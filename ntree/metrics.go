package ntree

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	treeReads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ntree_reads_total",
		Help: "The number of region reads.",
	})

	treeWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ntree_writes_total",
		Help: "The number of region writes.",
	})

	treeDeletes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ntree_deletes_total",
		Help: "The number of region deletions.",
	})

	nodeSplits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ntree_node_splits_total",
		Help: "The number of leaves split into children.",
	})

	nodeMerges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ntree_node_merges_total",
		Help: "The number of internal nodes collapsed into leaves.",
	})

	boundsErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ntree_out_of_bounds_total",
		Help: "The number of operations rejected as out of bounds.",
	})
)

func instrumentRead() {
	treeReads.Inc()
}

func instrumentWrite() {
	treeWrites.Inc()
}

func instrumentDelete() {
	treeDeletes.Inc()
}

func instrumentSplit() {
	nodeSplits.Inc()
}

func instrumentMerge() {
	nodeMerges.Inc()
}

func instrumentBoundsError() {
	boundsErrors.Inc()
}
