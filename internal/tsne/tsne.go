package tsne

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// eps is the double-precision machine epsilon, used as a floor for probabilities.
const eps = 0x1p-52

// Result is the outcome of a projection.
type Result struct {
	Coordinates *mat.Dense // n×2
	Divergence  float64    // final KL(P||Q)
	Iterations  int
}

// Project maps the rows of data into two dimensions.
// The output depends only on data and cfg: equal inputs give identical coordinates.
func Project(data mat.Matrix, cfg Config) (*Result, error) {
	n, d := data.Dims()
	if err := cfg.Validate(n, d); err != nil {
		return nil, err
	}

	p := jointProbabilities(squaredDistances(data), n, cfg.Perplexity)

	y, err := initialLayout(data, cfg)
	if err != nil {
		return nil, err
	}

	kl, iters := optimize(p, y, n, cfg)
	return &Result{
		Coordinates: mat.NewDense(n, Components, y),
		Divergence:  kl,
		Iterations:  iters,
	}, nil
}

// squaredDistances returns the n×n matrix of squared Euclidean distances, row-major.
func squaredDistances(data mat.Matrix) []float64 {
	n, _ := data.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, data)
	}

	dist := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var s float64
			for k, v := range rows[i] {
				diff := v - rows[j][k]
				s += diff * diff
			}
			dist[i*n+j] = s
			dist[j*n+i] = s
		}
	}
	return dist
}

// conditionalRow fills row with P(j|i) for a Gaussian kernel whose precision is
// tuned by bisection until the row entropy matches log(perplexity).
func conditionalRow(dist []float64, i int, desiredEntropy float64, row []float64) {
	n := len(row)
	beta := 1.0
	betaMin, betaMax := math.Inf(-1), math.Inf(1)

	for step := 0; step < perplexitySteps; step++ {
		var sumP float64
		for j := 0; j < n; j++ {
			if j == i {
				row[j] = 0
				continue
			}
			row[j] = math.Exp(-dist[i*n+j] * beta)
			sumP += row[j]
		}
		if sumP == 0 {
			sumP = 1e-8
		}

		var sumDistP float64
		for j := 0; j < n; j++ {
			row[j] /= sumP
			sumDistP += dist[i*n+j] * row[j]
		}

		entropy := math.Log(sumP) + beta*sumDistP
		diff := entropy - desiredEntropy
		if math.Abs(diff) <= perplexityTolerance {
			return
		}

		if diff > 0 {
			betaMin = beta
			if math.IsInf(betaMax, 1) {
				beta *= 2
			} else {
				beta = (beta + betaMax) / 2
			}
		} else {
			betaMax = beta
			if math.IsInf(betaMin, -1) {
				beta /= 2
			} else {
				beta = (beta + betaMin) / 2
			}
		}
	}
}

// jointProbabilities symmetrizes the conditional affinities into a joint
// distribution over ordered pairs that sums to one.
func jointProbabilities(dist []float64, n int, perplexity float64) []float64 {
	cond := make([]float64, n*n)
	desired := math.Log(perplexity)
	for i := 0; i < n; i++ {
		conditionalRow(dist, i, desired, cond[i*n:(i+1)*n])
	}

	p := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p[i*n+j] = cond[i*n+j] + cond[j*n+i]
		}
	}

	sum := max(floats.Sum(p), eps)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			p[i*n+j] = max(p[i*n+j]/sum, eps)
		}
	}
	return p
}

// initialLayout returns the starting n×2 coordinates, row-major.
func initialLayout(data mat.Matrix, cfg Config) ([]float64, error) {
	n, _ := data.Dims()
	if cfg.Init == InitRandom {
		rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
		y := make([]float64, n*Components)
		for k := range y {
			y[k] = rng.NormFloat64() * initScale
		}
		return y, nil
	}
	return pcaLayout(data)
}

// pcaLayout projects the centered data onto its first two principal axes.
// Each axis is oriented so its largest-magnitude coordinate is positive,
// and the layout is scaled so the first axis has standard deviation 1e-4.
func pcaLayout(data mat.Matrix) ([]float64, error) {
	n, d := data.Dims()

	centered := mat.DenseCopyOf(data)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, centered)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			centered.Set(i, j, col[i]-mean)
		}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(centered, nil); !ok {
		return nil, errors.New("principal component analysis failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	var proj mat.Dense
	proj.Mul(centered, vecs.Slice(0, d, 0, Components))

	for k := 0; k < Components; k++ {
		col := mat.Col(nil, k, &proj)
		if col[floats.MaxIdx(absAll(col))] < 0 {
			for i := 0; i < n; i++ {
				proj.Set(i, k, -proj.At(i, k))
			}
		}
	}

	scale := initScale
	if sd := stat.PopStdDev(mat.Col(nil, 0, &proj), nil); sd > 0 {
		scale /= sd
	}

	y := make([]float64, n*Components)
	for i := 0; i < n; i++ {
		for k := 0; k < Components; k++ {
			y[i*Components+k] = proj.At(i, k) * scale
		}
	}
	return y, nil
}

func absAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Abs(x)
	}
	return out
}

// optimize runs momentum gradient descent with per-parameter gains on y in place.
// It returns the final divergence and the number of iterations run.
func optimize(p, y []float64, n int, cfg Config) (float64, int) {
	exaggeration := cfg.EarlyExaggeration
	for k := range p {
		p[k] *= exaggeration
	}

	lr := cfg.learningRate(n)
	momentum := initialMomentum
	update := make([]float64, len(y))
	gains := make([]float64, len(y))
	for k := range gains {
		gains[k] = 1
	}
	grad := make([]float64, len(y))
	num := make([]float64, n*n)

	var kl float64
	iter := 0
	for iter < cfg.Iterations {
		if iter == exaggerationIterations {
			for k := range p {
				p[k] /= exaggeration
			}
			exaggeration = 1
			momentum = finalMomentum
		}

		kl = gradient(p, y, n, num, grad)

		for k := range grad {
			if update[k]*grad[k] < 0 {
				gains[k] += 0.2
			} else {
				gains[k] *= 0.8
			}
			gains[k] = max(gains[k], minGain)
			grad[k] *= gains[k]
			update[k] = momentum*update[k] - lr*grad[k]
			y[k] += update[k]
		}
		iter++

		if cfg.Progress != nil && iter%progressInterval == 0 {
			cfg.Progress(iter, kl)
		}
		if iter > exaggerationIterations && floats.Norm(grad, 2) <= minGradNorm {
			break
		}
	}

	if exaggeration != 1 {
		for k := range p {
			p[k] /= exaggeration
		}
	}
	kl = gradient(p, y, n, num, grad)
	if cfg.Progress != nil {
		cfg.Progress(iter, kl)
	}
	return kl, iter
}

// gradient writes the KL gradient with respect to y into grad and returns
// KL(P||Q), where Q uses a Student-t kernel with one degree of freedom.
func gradient(p, y []float64, n int, num, grad []float64) float64 {
	var sumNum float64
	for i := 0; i < n; i++ {
		num[i*n+i] = 0
		for j := i + 1; j < n; j++ {
			dx := y[i*Components] - y[j*Components]
			dy := y[i*Components+1] - y[j*Components+1]
			v := 1 / (1 + dx*dx + dy*dy)
			num[i*n+j] = v
			num[j*n+i] = v
			sumNum += 2 * v
		}
	}

	var kl float64
	for k := range grad {
		grad[k] = 0
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			pij := p[i*n+j]
			qij := max(num[i*n+j]/sumNum, eps)
			kl += pij * math.Log(max(pij, eps)/qij)

			mult := 4 * (pij - qij) * num[i*n+j]
			grad[i*Components] += mult * (y[i*Components] - y[j*Components])
			grad[i*Components+1] += mult * (y[i*Components+1] - y[j*Components+1])
		}
	}
	return kl
}
