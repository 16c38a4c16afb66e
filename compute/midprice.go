package compute

// MidPrice computes the mid-price computed metric, (bid+ask)/2, for each
// aligned pair of best_bid/best_ask samples. A plain sequential loop: unlike
// MinMax and AggregateCandles, this is a single multiply-add per element
// with no reduction step, so pool dispatch overhead would dominate the work
// itself (the same reasoning the culling kernel uses to stay CPU-side).
//
// Parameters:
//   - bestBid, bestAsk: aligned columns of equal length
//
// Returns:
//   - []float32: the mid-price at each index, or nil if lengths disagree
func MidPrice(bestBid, bestAsk []float32) []float32 {
	if len(bestBid) != len(bestAsk) {
		return nil
	}
	out := make([]float32, len(bestBid))
	for i := range bestBid {
		out[i] = (bestBid[i] + bestAsk[i]) / 2
	}
	return out
}
