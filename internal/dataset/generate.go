package dataset

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// GenerateOptions controls synthetic trip generation.
type GenerateOptions struct {
	// Trips is the number of trips to generate. Must be positive.
	Trips int

	// Seed drives the random source. The same seed, zone table, and
	// options always produce the same trips.
	Seed int64

	// Start is the first pickup day. Zero value defaults to 2024-01-01.
	Start time.Time

	// Days is the span of pickup days. Zero defaults to 90.
	Days int
}

// Orphan location ids planted by the generator: present on trips but
// absent from the zones table. Exercises about unmatched joins rely on
// these existing.
var orphanLocationIDs = []int64{57, 264, 265}

// Data-quality window carried over from the workbook's loader: trips
// outside these bounds were filtered out of the source data, so the
// generator never produces them.
const (
	maxFare        = 500.0
	maxDistance    = 100.0
	maxPassengers  = 6
	tripsPerCommit = 500
)

// GenerateTrips fills the trips table with deterministic synthetic data.
// The zones table must already be seeded. Existing trips are kept;
// generated trip_ids continue after the current maximum.
// Returns the number of trips inserted.
func (d *DB) GenerateTrips(ctx context.Context, opts GenerateOptions) (int, error) {
	if opts.Trips <= 0 {
		return 0, fmt.Errorf("trips must be positive, got %d", opts.Trips)
	}
	if opts.Start.IsZero() {
		opts.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if opts.Days <= 0 {
		opts.Days = 90
	}

	zoneIDs, err := d.ZoneIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(zoneIDs) == 0 {
		return 0, fmt.Errorf("zones table is empty: seed zones before generating trips")
	}

	var nextID int64
	if err := d.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(trip_id), 0) + 1 FROM trips").Scan(&nextID); err != nil {
		return 0, fmt.Errorf("next trip id: %w", err)
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	inserted := 0
	for inserted < opts.Trips {
		batch := opts.Trips - inserted
		if batch > tripsPerCommit {
			batch = tripsPerCommit
		}
		if err := d.insertTripBatch(ctx, rng, zoneIDs, nextID+int64(inserted), batch, opts); err != nil {
			return inserted, err
		}
		inserted += batch
	}
	return inserted, nil
}

// insertTripBatch writes one transaction's worth of generated trips.
func (d *DB) insertTripBatch(ctx context.Context, rng *rand.Rand, zoneIDs []int64, firstID int64, n int, opts GenerateOptions) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trips (
			trip_id, pickup_datetime, dropoff_datetime,
			pickup_location_id, dropoff_location_id,
			passenger_count, trip_distance,
			fare_amount, tip_amount, total_amount, payment_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		t := synthesizeTrip(rng, zoneIDs, opts)
		if _, err := stmt.ExecContext(ctx,
			firstID+int64(i),
			t.pickup.Format(sqliteTimeFormat),
			t.dropoff.Format(sqliteTimeFormat),
			t.pickupLoc, t.dropoffLoc,
			t.passengers, t.distance,
			t.fare, t.tip, t.total, t.payment,
		); err != nil {
			return fmt.Errorf("insert trip %d: %w", firstID+int64(i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit trips: %w", err)
	}
	return nil
}

const sqliteTimeFormat = "2006-01-02 15:04:05"

type synthTrip struct {
	pickup, dropoff        time.Time
	pickupLoc, dropoffLoc  int64
	passengers             int64
	distance               float64
	fare, tip, total       float64
	payment                int64
}

// hourWeights skews pickups toward commute and evening hours.
var hourWeights = [24]int{
	1, 1, 1, 1, 1, 2, 4, 7, 8, 6, 5, 5,
	5, 5, 5, 6, 7, 9, 10, 9, 7, 6, 4, 2,
}

// synthesizeTrip draws one trip from the random source. All draws happen
// in a fixed order so a given seed always yields the same sequence.
func synthesizeTrip(rng *rand.Rand, zoneIDs []int64, opts GenerateOptions) synthTrip {
	var t synthTrip

	day := rng.Intn(opts.Days)
	hour := weightedHour(rng)
	minute := rng.Intn(60)
	second := rng.Intn(60)
	t.pickup = opts.Start.AddDate(0, 0, day).
		Add(time.Duration(hour)*time.Hour +
			time.Duration(minute)*time.Minute +
			time.Duration(second)*time.Second)

	t.pickupLoc = pickLocation(rng, zoneIDs, 0.02)
	t.dropoffLoc = pickLocation(rng, zoneIDs, 0.03)

	// Passenger count: solo rides dominate.
	switch p := rng.Float64(); {
	case p < 0.70:
		t.passengers = 1
	case p < 0.85:
		t.passengers = 2
	case p < 0.93:
		t.passengers = 3
	case p < 0.97:
		t.passengers = 4
	case p < 0.99:
		t.passengers = 5
	default:
		t.passengers = maxPassengers
	}

	// Distance: short urban hops with a long tail, clamped under the
	// data-quality ceiling.
	t.distance = roundCents(0.4 + rng.ExpFloat64()*2.6)
	if t.distance >= maxDistance {
		t.distance = maxDistance - 0.1
	}

	// Fare follows the metered structure: flag drop plus per-mile, with
	// mild noise. The formula cannot exceed the quality ceiling for any
	// distance under 100 miles.
	t.fare = roundCents(3.0 + t.distance*2.75 + rng.Float64()*3.0)
	if t.fare >= maxFare {
		t.fare = maxFare - 0.5
	}

	// Payment type: credit dominates, cash second, rare no-charge/dispute.
	switch p := rng.Float64(); {
	case p < 0.70:
		t.payment = PaymentCredit
	case p < 0.95:
		t.payment = PaymentCash
	case p < 0.98:
		t.payment = PaymentNoCharge
	default:
		t.payment = PaymentDispute
	}

	// Tips: card tips cluster around 15-25%; cash tips mostly unrecorded.
	tipDraw := rng.Float64()
	switch t.payment {
	case PaymentCredit:
		t.tip = roundCents(t.fare * (0.10 + tipDraw*0.20))
	case PaymentCash:
		if tipDraw < 0.10 {
			t.tip = roundCents(t.fare * 0.10)
		}
	}

	// Fixed surcharges stand in for the taxes and fees on a real receipt.
	t.total = roundCents(t.fare + t.tip + 1.50)

	// Duration from distance at city speeds, plus idle noise.
	minutes := t.distance/0.18 + rng.Float64()*8
	t.dropoff = t.pickup.Add(time.Duration(minutes * float64(time.Minute)))

	return t
}

// pickLocation draws a zone id, occasionally substituting an orphan id
// that has no zones row.
func pickLocation(rng *rand.Rand, zoneIDs []int64, orphanRate float64) int64 {
	// Draw order is fixed: orphan check first, then the zone index, so
	// the sequence stays stable if zone count changes.
	orphanDraw := rng.Float64()
	idx := rng.Intn(len(zoneIDs))
	if orphanDraw < orphanRate {
		return orphanLocationIDs[idx%len(orphanLocationIDs)]
	}
	return zoneIDs[idx]
}

// weightedHour draws an hour of day from hourWeights.
func weightedHour(rng *rand.Rand) int {
	total := 0
	for _, w := range hourWeights {
		total += w
	}
	draw := rng.Intn(total)
	for hour, w := range hourWeights {
		if draw < w {
			return hour
		}
		draw -= w
	}
	return 23
}

// roundCents rounds to two decimal places, the resolution of the source
// data's money and distance columns.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
