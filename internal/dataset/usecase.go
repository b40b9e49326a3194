package dataset

// Record is one scored candidate scheme as written to the result sink.
type Record struct {
	Run        string
	Scheme     []int
	Value      float64
	LowerBound float64
	Classes    int
	Outliers   int
}

type ResultRepository interface {
	Append(r Record)
	Close()
}

// NoopResultRepository discards all records.
type NoopResultRepository struct{}

func (NoopResultRepository) Append(Record) {}
func (NoopResultRepository) Close()        {}
