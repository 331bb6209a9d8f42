package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"fleet_tracker/internal/models"
	"fleet_tracker/internal/repository"
	"fleet_tracker/internal/repository/memory"
)

func setupDispatchService() (*DispatchService, *memory.UserRepository, *memory.TripRepository, *memory.StopRepository) {
	users := memory.NewUserRepository()
	trips := memory.NewTripRepository()
	stops := memory.NewStopRepository()
	return NewDispatchService(users, trips, stops), users, trips, stops
}

func seedDriver(t *testing.T, users *memory.UserRepository, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Name: username, Role: "driver", Password: "x"}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed driver: %v", err)
	}
	return u
}

func seedStops(t *testing.T, stops *memory.StopRepository, names ...string) []primitive.ObjectID {
	t.Helper()
	ids := make([]primitive.ObjectID, 0, len(names))
	for i, name := range names {
		s := &models.Stop{Name: name, Location: models.GeoPoint{Lat: -1.28 + float64(i)/100, Lng: 36.82}}
		if err := stops.Create(context.Background(), s); err != nil {
			t.Fatalf("seed stop: %v", err)
		}
		ids = append(ids, s.ID)
	}
	return ids
}

func seedTrip(t *testing.T, svc *DispatchService, stops *memory.StopRepository) *models.Trip {
	t.Helper()
	ids := seedStops(t, stops, "Depot", "Warehouse")
	trip, err := svc.CreateTrip(context.Background(), "morning delivery", ids)
	if err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	return trip
}

func TestCreateTripValidation(t *testing.T) {
	svc, _, _, stops := setupDispatchService()
	ctx := context.Background()
	ids := seedStops(t, stops, "A", "B")

	if _, err := svc.CreateTrip(ctx, "", ids); !errors.Is(err, ErrValidation) {
		t.Errorf("missing details: got %v, want ErrValidation", err)
	}
	if _, err := svc.CreateTrip(ctx, "x", ids[:1]); !errors.Is(err, ErrValidation) {
		t.Errorf("single stop: got %v, want ErrValidation", err)
	}
	bogus := append([]primitive.ObjectID{primitive.NewObjectID()}, ids...)
	if _, err := svc.CreateTrip(ctx, "x", bogus); !errors.Is(err, ErrValidation) {
		t.Errorf("unresolvable stop: got %v, want ErrValidation", err)
	}
}

func TestCreateTripPreservesStopOrder(t *testing.T) {
	svc, _, _, stops := setupDispatchService()
	ctx := context.Background()

	ids := seedStops(t, stops, "First", "Second", "Third")
	// request them in reverse of creation order
	reversed := []primitive.ObjectID{ids[2], ids[0], ids[1]}

	trip, err := svc.CreateTrip(ctx, "round trip", reversed)
	if err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}
	if trip.Status != models.TripStatusPending {
		t.Errorf("new trip status = %s, want pending", trip.Status)
	}
	want := []string{"Third", "First", "Second"}
	for i, st := range trip.Stops {
		if st.Name != want[i] {
			t.Errorf("stop %d = %s, want %s", i, st.Name, want[i])
		}
	}
}

func TestAssignDriverLifecycle(t *testing.T) {
	svc, users, _, stops := setupDispatchService()
	ctx := context.Background()

	driver := seedDriver(t, users, "wanjiku")
	trip := seedTrip(t, svc, stops)

	assigned, err := svc.AssignDriver(ctx, trip.ID, driver.ID)
	if err != nil {
		t.Fatalf("AssignDriver failed: %v", err)
	}
	if assigned.Status != models.TripStatusAssigned {
		t.Errorf("status = %s, want assigned", assigned.Status)
	}
	if assigned.AssignedDriverID == nil || *assigned.AssignedDriverID != driver.ID {
		t.Error("assigned_driver_id not set")
	}
	if assigned.AssignedDriverName != driver.Name {
		t.Errorf("driver name snapshot = %q, want %q", assigned.AssignedDriverName, driver.Name)
	}

	// availability invariant: the driver now points back at this trip
	u, _ := users.GetByID(ctx, driver.ID)
	if u.ActiveTripID == nil || *u.ActiveTripID != trip.ID {
		t.Error("driver active_trip_id does not reference the assigned trip")
	}

	started, err := svc.StartTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("StartTrip failed: %v", err)
	}
	if started.Status != models.TripStatusActive || started.StartedAt == nil {
		t.Error("StartTrip did not activate the trip")
	}

	if err := svc.RecordDriverLocation(ctx, driver.ID, models.GeoPoint{Lat: -1.3, Lng: 36.9}); err != nil {
		t.Fatalf("RecordDriverLocation failed: %v", err)
	}

	if err := svc.CompleteTrip(ctx, trip.ID, driver.ID); err != nil {
		t.Fatalf("CompleteTrip failed: %v", err)
	}
	u, _ = users.GetByID(ctx, driver.ID)
	if u.ActiveTripID != nil {
		t.Error("driver still occupied after completion")
	}
	if u.Location != nil {
		t.Error("driver location not cleared after completion")
	}
}

func TestAssignDriverRejectsOccupiedDriver(t *testing.T) {
	svc, users, _, stops := setupDispatchService()
	ctx := context.Background()

	driver := seedDriver(t, users, "otieno")
	trip1 := seedTrip(t, svc, stops)
	trip2 := seedTrip(t, svc, stops)

	if _, err := svc.AssignDriver(ctx, trip1.ID, driver.ID); err != nil {
		t.Fatalf("first assignment failed: %v", err)
	}
	_, err := svc.AssignDriver(ctx, trip2.ID, driver.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second assignment: got %v, want conflict", err)
	}
	// trip2 must still be up for grabs
	if _, err := svc.StartTrip(ctx, trip2.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("trip2 should still be pending, start gave %v", err)
	}
}

func TestAssignDriverNotFound(t *testing.T) {
	svc, users, _, stops := setupDispatchService()
	ctx := context.Background()

	driver := seedDriver(t, users, "kamau")
	trip := seedTrip(t, svc, stops)

	if _, err := svc.AssignDriver(ctx, primitive.NewObjectID(), driver.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown trip: got %v, want ErrNotFound", err)
	}
	if _, err := svc.AssignDriver(ctx, trip.ID, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown driver: got %v, want ErrNotFound", err)
	}
}

func TestAssignDriverRejectsNonDriver(t *testing.T) {
	svc, users, _, stops := setupDispatchService()
	ctx := context.Background()

	admin := &models.User{Username: "boss", Name: "Boss", Role: "admin", Password: "x"}
	if err := users.Create(ctx, admin); err != nil {
		t.Fatal(err)
	}
	trip := seedTrip(t, svc, stops)

	if _, err := svc.AssignDriver(ctx, trip.ID, admin.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("assigning an admin: got %v, want ErrValidation", err)
	}
}

// Two goroutines per driver race to assign different trips to the same idle
// driver. Exactly one per round may win.
func TestAssignDriverConcurrentOnlyOneWins(t *testing.T) {
	svc, users, _, stops := setupDispatchService()
	ctx := context.Background()

	const rounds = 20
	for i := 0; i < rounds; i++ {
		driver := seedDriver(t, users, "racer-"+primitive.NewObjectID().Hex())
		tripA := seedTrip(t, svc, stops)
		tripB := seedTrip(t, svc, stops)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j, tripID := range []primitive.ObjectID{tripA.ID, tripB.ID} {
			wg.Add(1)
			go func(slot int, id primitive.ObjectID) {
				defer wg.Done()
				_, errs[slot] = svc.AssignDriver(ctx, id, driver.ID)
			}(j, tripID)
		}
		wg.Wait()

		okCount := 0
		for _, err := range errs {
			if err == nil {
				okCount++
			} else if !errors.Is(err, ErrConflict) {
				t.Fatalf("unexpected race error: %v", err)
			}
		}
		if okCount != 1 {
			t.Fatalf("round %d: %d assignments succeeded, want exactly 1", i, okCount)
		}

		u, _ := users.GetByID(ctx, driver.ID)
		if u.ActiveTripID == nil {
			t.Fatalf("round %d: winner did not claim the driver", i)
		}
	}
}

func TestTripStatusNeverRegresses(t *testing.T) {
	svc, users, _, stops := setupDispatchService()
	ctx := context.Background()

	driver := seedDriver(t, users, "njeri")
	trip := seedTrip(t, svc, stops)

	// out-of-order calls against a pending trip
	if _, err := svc.StartTrip(ctx, trip.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("start on pending: got %v, want conflict", err)
	}
	if err := svc.CompleteTrip(ctx, trip.ID, driver.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("complete on pending: got %v, want conflict", err)
	}

	if _, err := svc.AssignDriver(ctx, trip.ID, driver.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.StartTrip(ctx, trip.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.CompleteTrip(ctx, trip.ID, driver.ID); err != nil {
		t.Fatal(err)
	}

	// completed is terminal
	if _, err := svc.AssignDriver(ctx, trip.ID, driver.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("assign on completed: got %v, want conflict", err)
	}
	if _, err := svc.StartTrip(ctx, trip.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("start on completed: got %v, want conflict", err)
	}
	if err := svc.CompleteTrip(ctx, trip.ID, driver.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("complete twice: got %v, want conflict", err)
	}
}

// Completing a trip with some other driver's id must not go through: it
// would mark the trip completed while its own driver stays claimed, and
// free a driver whose trip is still running.
func TestCompleteTripRejectsWrongDriver(t *testing.T) {
	svc, users, trips, stops := setupDispatchService()
	ctx := context.Background()

	juma := seedDriver(t, users, "juma")
	halima := seedDriver(t, users, "halima")
	tripA := seedTrip(t, svc, stops)
	tripB := seedTrip(t, svc, stops)

	for _, pair := range []struct {
		trip   *models.Trip
		driver *models.User
	}{{tripA, juma}, {tripB, halima}} {
		if _, err := svc.AssignDriver(ctx, pair.trip.ID, pair.driver.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.StartTrip(ctx, pair.trip.ID); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.RecordDriverLocation(ctx, halima.ID, models.GeoPoint{Lat: -1.3, Lng: 36.8}); err != nil {
		t.Fatal(err)
	}

	if err := svc.CompleteTrip(ctx, tripA.ID, halima.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("completing trip A with driver B's id: got %v, want conflict", err)
	}

	// nothing moved on either side
	got, _ := trips.GetByID(ctx, tripA.ID)
	if got.Status != models.TripStatusActive {
		t.Errorf("trip A status = %s, want active", got.Status)
	}
	uj, _ := users.GetByID(ctx, juma.ID)
	if uj.ActiveTripID == nil || *uj.ActiveTripID != tripA.ID {
		t.Error("trip A's driver lost their claim")
	}
	uh, _ := users.GetByID(ctx, halima.ID)
	if uh.ActiveTripID == nil || *uh.ActiveTripID != tripB.ID {
		t.Error("driver B was released while trip B is still active")
	}
	if uh.Location == nil {
		t.Error("driver B's location was cleared")
	}

	// the right driver still can
	if err := svc.CompleteTrip(ctx, tripA.ID, juma.ID); err != nil {
		t.Fatalf("completing with the holding driver failed: %v", err)
	}
}

// failAssignTripRepo simulates losing the trip-side write after the driver
// claim succeeded.
type failAssignTripRepo struct {
	*memory.TripRepository
}

func (r *failAssignTripRepo) MarkAssigned(ctx context.Context, tripID, driverID primitive.ObjectID, driverName string) error {
	return repository.ErrNotMatched
}

func TestLostAssignmentRaceKeepsDriverLocation(t *testing.T) {
	users := memory.NewUserRepository()
	trips := &failAssignTripRepo{memory.NewTripRepository()}
	stops := memory.NewStopRepository()
	svc := NewDispatchService(users, trips, stops)
	ctx := context.Background()

	driver := seedDriver(t, users, "baraka")
	if err := svc.RecordDriverLocation(ctx, driver.ID, models.GeoPoint{Lat: -1.29, Lng: 36.82}); err != nil {
		t.Fatal(err)
	}
	trip := seedTrip(t, svc, stops)

	if _, err := svc.AssignDriver(ctx, trip.ID, driver.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("lost race: got %v, want conflict", err)
	}

	u, _ := users.GetByID(ctx, driver.ID)
	if u.ActiveTripID != nil {
		t.Error("claim was not rolled back")
	}
	if u.Location == nil {
		t.Error("rollback dropped the driver's last known point")
	}
}

func TestRecordDriverLocation(t *testing.T) {
	svc, users, _, _ := setupDispatchService()
	ctx := context.Background()

	driver := seedDriver(t, users, "mutua")

	// recording works with no active trip
	if err := svc.RecordDriverLocation(ctx, driver.ID, models.GeoPoint{Lat: -1.29, Lng: 36.82}); err != nil {
		t.Fatalf("RecordDriverLocation failed: %v", err)
	}
	// only the latest point is kept
	if err := svc.RecordDriverLocation(ctx, driver.ID, models.GeoPoint{Lat: -1.31, Lng: 36.85}); err != nil {
		t.Fatal(err)
	}
	u, _ := users.GetByID(ctx, driver.ID)
	if u.Location == nil || u.Location.Lat != -1.31 {
		t.Errorf("location = %v, want latest point", u.Location)
	}

	if err := svc.RecordDriverLocation(ctx, driver.ID, models.GeoPoint{Lat: 95, Lng: 0}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad coordinates: got %v, want ErrValidation", err)
	}
	if err := svc.RecordDriverLocation(ctx, primitive.NewObjectID(), models.GeoPoint{Lat: 0, Lng: 0}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown driver: got %v, want ErrNotFound", err)
	}
}

func TestActiveTripsWithLocations(t *testing.T) {
	svc, users, _, stops := setupDispatchService()
	ctx := context.Background()

	located := seedDriver(t, users, "located")
	silent := seedDriver(t, users, "silent")

	for _, d := range []*models.User{located, silent} {
		trip := seedTrip(t, svc, stops)
		if _, err := svc.AssignDriver(ctx, trip.ID, d.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.StartTrip(ctx, trip.ID); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.RecordDriverLocation(ctx, located.ID, models.GeoPoint{Lat: -1.3, Lng: 36.8}); err != nil {
		t.Fatal(err)
	}

	active, err := svc.ActiveTripsWithLocations(ctx)
	if err != nil {
		t.Fatalf("ActiveTripsWithLocations failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("got %d active trips, want 2", len(active))
	}
	for _, at := range active {
		if at.Path == "" {
			t.Error("expected a GeoJSON path for the stop sequence")
		}
		switch *at.AssignedDriverID {
		case located.ID:
			if at.CurrentLocation == nil || at.CurrentLocation.Lat != -1.3 {
				t.Errorf("located driver: location = %v", at.CurrentLocation)
			}
		case silent.ID:
			if at.CurrentLocation != nil {
				t.Error("silent driver should have nil location")
			}
		}
	}
}

func TestAvailableDrivers(t *testing.T) {
	svc, users, _, stops := setupDispatchService()
	ctx := context.Background()

	free := seedDriver(t, users, "free")
	busy := seedDriver(t, users, "busy")
	admin := &models.User{Username: "admin", Name: "Admin", Role: "admin", Password: "x"}
	if err := users.Create(ctx, admin); err != nil {
		t.Fatal(err)
	}

	trip := seedTrip(t, svc, stops)
	if _, err := svc.AssignDriver(ctx, trip.ID, busy.ID); err != nil {
		t.Fatal(err)
	}

	drivers, err := svc.AvailableDrivers(ctx)
	if err != nil {
		t.Fatalf("AvailableDrivers failed: %v", err)
	}
	if len(drivers) != 1 || drivers[0].ID != free.ID {
		t.Errorf("available drivers = %v, want only %s", drivers, free.Username)
	}
}

func TestDriverActiveTrip(t *testing.T) {
	svc, users, _, stops := setupDispatchService()
	ctx := context.Background()

	driver := seedDriver(t, users, "akinyi")

	trip, err := svc.DriverActiveTrip(ctx, driver.ID)
	if err != nil {
		t.Fatalf("DriverActiveTrip failed: %v", err)
	}
	if trip != nil {
		t.Error("idle driver should have no active trip")
	}

	created := seedTrip(t, svc, stops)
	if _, err := svc.AssignDriver(ctx, created.ID, driver.ID); err != nil {
		t.Fatal(err)
	}
	trip, err = svc.DriverActiveTrip(ctx, driver.ID)
	if err != nil {
		t.Fatal(err)
	}
	if trip == nil || trip.ID != created.ID {
		t.Error("expected the assigned trip back")
	}

	if _, err := svc.DriverActiveTrip(ctx, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown driver: got %v, want ErrNotFound", err)
	}
}
