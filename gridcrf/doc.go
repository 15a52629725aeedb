// Package gridcrf implements grid-structured conditional random fields as
// model adapters for the cutting-plane learner.
//
// An Image is an H×W grid of feature vectors and a Labeling assigns one of
// NStates states to every cell. Cells are numbered row-major, edges come
// from gridgraph under the configured connectivity.
//
// Two models are provided:
//
//	GridCRF             unary weights per (state, feature) and one symmetric
//	                    pairwise table shared by every edge.
//	                    SizePsi = NStates·NFeatures + NStates·(NStates+1)/2.
//	DirectionalGridCRF  unary weight per state applied to the matching
//	                    feature (NFeatures must equal NStates) and a full
//	                    NStates×NStates table per edge direction.
//	                    SizePsi = NStates + directions·NStates².
//
// Both use the Hamming loss (number of differing cells). Loss-augmented
// inference adds 1 to the unary of every state other than the true one and
// hands the resulting energy to an inference.Oracle.
//
// Errors:
//
//	ErrShape      - ragged grids, feature counts or labeling shapes that do not match.
//	ErrState      - a label outside [0, NStates).
//	ErrWeights    - a weight vector whose length differs from SizePsi.
//	ErrConfig     - invalid model parameters.
package gridcrf
