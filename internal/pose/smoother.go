package pose

const HistorySize = 5

// History is a ring buffer of the last smoothed samples of one hand slot.
type History struct {
	samples [HistorySize]Hand
	next    int
	count   int
}

func (h *History) Push(hand Hand) {
	h.samples[h.next] = hand
	h.next = (h.next + 1) % HistorySize
	if h.count < HistorySize {
		h.count++
	}
}

func (h *History) Len() int {
	return h.count
}

// Last returns the most recent sample, ok is false on an empty history.
func (h *History) Last() (Hand, bool) {
	if h.count == 0 {
		return Hand{}, false
	}
	return h.samples[(h.next+HistorySize-1)%HistorySize], true
}

func (h *History) Reset() {
	*h = History{}
}

// Smooth applies an exponential moving average seeded by the newest sample in
// history and records the result. A cold history passes the sample through.
func Smooth(sample Hand, history *History, alpha float64) Hand {
	last, ok := history.Last()
	if !ok {
		history.Push(sample)
		return sample
	}
	var smoothed Hand
	for i := range sample {
		o, n := last[i], sample[i]
		smoothed[i] = Landmark{
			X: o.X*(1-alpha) + n.X*alpha,
			Y: o.Y*(1-alpha) + n.Y*alpha,
			Z: o.Z*(1-alpha) + n.Z*alpha,
		}
	}
	history.Push(smoothed)
	return smoothed
}
