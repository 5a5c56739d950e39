package ports

// ChartRenderer renders static chart images from prepared series.
// Implementations return the path of the written image.
type ChartRenderer interface {
	Histogram(values []float64, title, xLabel, filename string) (string, error)
	Bar(labels []string, values []float64, title, yLabel, filename string) (string, error)
	Scatter(x, y []float64, title, xLabel, yLabel, filename string) (string, error)
}
