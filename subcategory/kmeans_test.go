package subcategory

import "testing"

func TestKMeansSeparatesObviousClusters(t *testing.T) {
	// two tight groups on opposite corners
	matrix := [][]float64{
		{1, 0}, {0.9, 0.1}, {0.95, 0.05},
		{0, 1}, {0.1, 0.9}, {0.05, 0.95},
	}
	km := &KMeans{K: 2, MaxIter: 100, Seed: 42}
	assign, err := km.FitPredict(matrix)
	if err != nil {
		t.Fatalf("FitPredict() error = %v", err)
	}
	if len(assign) != len(matrix) {
		t.Fatalf("assign length = %d, want %d", len(assign), len(matrix))
	}

	if assign[0] != assign[1] || assign[1] != assign[2] {
		t.Errorf("first group split: %v", assign[:3])
	}
	if assign[3] != assign[4] || assign[4] != assign[5] {
		t.Errorf("second group split: %v", assign[3:])
	}
	if assign[0] == assign[3] {
		t.Errorf("groups merged: %v", assign)
	}
}

func TestKMeansClampsK(t *testing.T) {
	matrix := [][]float64{{1, 0}, {0, 1}}

	// k larger than n clamps to n
	km := &KMeans{K: 5, Seed: 42}
	assign, err := km.FitPredict(matrix)
	if err != nil {
		t.Fatalf("FitPredict() error = %v", err)
	}
	for _, c := range assign {
		if c < 0 || c >= len(matrix) {
			t.Errorf("cluster index %d out of range", c)
		}
	}

	// k below 1 clamps to 1
	km = &KMeans{K: 0, Seed: 42}
	assign, err = km.FitPredict(matrix)
	if err != nil {
		t.Fatalf("FitPredict() error = %v", err)
	}
	for _, c := range assign {
		if c != 0 {
			t.Errorf("single cluster expected, got index %d", c)
		}
	}
}

func TestKMeansDeterministicWithSeed(t *testing.T) {
	matrix := [][]float64{
		{1, 0, 0}, {0.8, 0.2, 0}, {0, 1, 0}, {0, 0.9, 0.1}, {0, 0, 1}, {0.1, 0, 0.9},
	}
	km := &KMeans{K: 3, Seed: 42}

	a, err := km.FitPredict(matrix)
	if err != nil {
		t.Fatalf("FitPredict() error = %v", err)
	}
	b, err := km.FitPredict(matrix)
	if err != nil {
		t.Fatalf("FitPredict() error = %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic assignment at %d: %v vs %v", i, a, b)
		}
	}
}

func TestKMeansEmptyInput(t *testing.T) {
	km := &KMeans{K: 2, Seed: 42}
	if _, err := km.FitPredict(nil); err == nil {
		t.Fatal("FitPredict() expected error for empty input")
	}
}

func TestKMeansIdenticalPoints(t *testing.T) {
	matrix := [][]float64{{1, 0}, {1, 0}, {1, 0}}
	km := &KMeans{K: 2, Seed: 42}
	assign, err := km.FitPredict(matrix)
	if err != nil {
		t.Fatalf("FitPredict() error = %v", err)
	}
	if len(assign) != 3 {
		t.Fatalf("assign length = %d, want 3", len(assign))
	}
}
