package main

// Regression dataset: 5 samples, 2 features, 3 targets.
var (
	inputs = []float64{
		-2.50919762, 9.01428613,
		4.63987884, 1.97316968,
		-6.87962719, -6.88010959,
		-8.83832776, 7.32352292,
		2.02230023, 4.16145156,
	}
	targets = []float64{
		-11.72720257, 26.31846104, 1.9252996,
		7.99632123, 1.92373599, 8.31626004,
		-5.78214882, -18.60535816, -14.07771627,
		-21.90779115, 23.38371524, -10.30991879,
		2.04125979, 10.26486724, 6.23829595,
	}
)

const (
	numSamples  = 5
	numFeatures = 2
	numOutputs  = 3
)

// Fixed starting weights for an 8-unit hidden layer. Each row holds one
// unit's input weights followed by its bias.
var (
	hiddenInit = [][]float64{
		{4.17022005e-01, 7.20324493e-01, 1.14374817e-04},
		{3.02332573e-01, 1.46755891e-01, 9.23385948e-02},
		{1.86260211e-01, 3.45560727e-01, 3.96767474e-01},
		{5.38816734e-01, 4.19194514e-01, 6.85219500e-01},
		{2.04452250e-01, 8.78117436e-01, 2.73875932e-02},
		{6.70467510e-01, 4.17304802e-01, 5.58689828e-01},
		{1.40386939e-01, 1.98101489e-01, 8.00744569e-01},
		{9.68261576e-01, 3.13424178e-01, 6.92322616e-01},
	}
	outputInit = [][]float64{
		{0.87638915, 0.89460666, 0.08504421, 0.03905478, 0.16983042, 0.8781425, 0.09834683, 0.42110763, 0.95788953},
		{0.53316528, 0.69187711, 0.31551563, 0.68650093, 0.83462567, 0.01828828, 0.75014431, 0.98886109, 0.74816565},
		{0.28044399, 0.78927933, 0.10322601, 0.44789353, 0.9085955, 0.29361415, 0.28777534, 0.13002857, 0.01936696},
	}
)
