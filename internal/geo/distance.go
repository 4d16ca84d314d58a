package geo

import (
	"math"
	"runtime"
	"sync"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// CoordPair is one (origin, destination) input to DistanceBatch.
type CoordPair struct {
	Lat1, Lon1 float64
	Lat2, Lon2 float64
}

// Distance returns the great-circle distance in kilometers between two
// points given in degrees, via the haversine formula. Deterministic,
// symmetric up to floating-point rounding, zero for identical points.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DistanceBatch applies Distance to each pair, fanning the work out
// across a bounded pool of goroutines. Each worker writes to its own
// index, so output order always matches input order regardless of
// completion order. Blocks until every pair is computed.
func DistanceBatch(pairs []CoordPair) []float64 {
	out := make([]float64, len(pairs))
	if len(pairs) == 0 {
		return out
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(pairs) {
		workers = len(pairs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				p := pairs[i]
				out[i] = Distance(p.Lat1, p.Lon1, p.Lat2, p.Lon2)
			}
		}()
	}

	for i := range pairs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}
