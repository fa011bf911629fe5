package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

type roomRepoStub struct {
	createErr error
	created   Room

	getRoom Room
	getErr  error

	updateErr error
	updated   Room

	deleteErr error
	deletedID string

	list    []Room
	listErr error

	activeCount int
	activeErr   error
}

func (r *roomRepoStub) CreateRoom(ctx context.Context, room Room) (Room, error) {
	if r.createErr != nil {
		return Room{}, r.createErr
	}
	r.created = room
	return room, nil
}

func (r *roomRepoStub) GetRoom(ctx context.Context, id string) (Room, error) {
	if r.getErr != nil {
		return Room{}, r.getErr
	}
	if r.getRoom.ID == "" {
		return Room{}, ErrNotFound
	}
	return r.getRoom, nil
}

func (r *roomRepoStub) UpdateRoom(ctx context.Context, room Room) (Room, error) {
	if r.updateErr != nil {
		return Room{}, r.updateErr
	}
	r.updated = room
	return room, nil
}

func (r *roomRepoStub) DeleteRoom(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedID = id
	return nil
}

func (r *roomRepoStub) ListRooms(ctx context.Context) ([]Room, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	if len(r.list) == 0 {
		return nil, nil
	}
	out := make([]Room, len(r.list))
	copy(out, r.list)
	return out, nil
}

func (r *roomRepoStub) CountActiveForRoom(ctx context.Context, roomID string, now time.Time) (int, error) {
	if r.activeErr != nil {
		return 0, r.activeErr
	}
	return r.activeCount, nil
}

func TestRoomService_CreateRoom(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewRoomService(nil, nil, nil)

		_, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: Principal{IsAdmin: false},
			Input: RoomInput{
				Name:     "Sala Turing",
				Capacity: 10,
			},
		})

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewRoomService(nil, nil, nil)

		_, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: Principal{IsAdmin: true},
			Input: RoomInput{
				Name:      "   ",
				Type:      RoomType("garagem"),
				Capacity:  -3,
				OpenTime:  9 * 60,
				CloseTime: 8 * 60,
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}

		for _, field := range []string{"name", "room_type", "capacity", "close_time"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("applies defaults and persists", func(t *testing.T) {
		repo := &roomRepoStub{}
		now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		svc := NewRoomService(repo, func() string { return "room-1" }, func() time.Time { return now })

		room, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			Input:     RoomInput{Name: "  Sala Turing  "},
		})
		if err != nil {
			t.Fatalf("CreateRoom returned error: %v", err)
		}

		if room.ID != "room-1" {
			t.Fatalf("expected generated ID, got %q", room.ID)
		}
		if room.Name != "Sala Turing" {
			t.Fatalf("expected trimmed name, got %q", room.Name)
		}
		if room.Type != RoomTypeStandard {
			t.Fatalf("expected default room type, got %q", room.Type)
		}
		if room.Capacity != DefaultRoomCapacity {
			t.Fatalf("expected default capacity, got %d", room.Capacity)
		}
		if room.OpenTime != DefaultOpenTime || room.CloseTime != DefaultCloseTime {
			t.Fatalf("expected default operating window, got %s to %s", room.OpenTime, room.CloseTime)
		}
		if !room.CreatedAt.Equal(now) || !room.UpdatedAt.Equal(now) {
			t.Fatalf("expected timestamps set from clock, got %v / %v", room.CreatedAt, room.UpdatedAt)
		}
	})

	t.Run("maps duplicate names", func(t *testing.T) {
		repo := &roomRepoStub{createErr: persistence.ErrDuplicate}
		svc := NewRoomService(repo, nil, nil)

		_, err := svc.CreateRoom(context.Background(), CreateRoomParams{
			Principal: Principal{IsAdmin: true},
			Input:     RoomInput{Name: "Sala Turing", Capacity: 5},
		})

		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestRoomService_UpdateRoom(t *testing.T) {
	t.Run("rejects non-administrators", func(t *testing.T) {
		svc := NewRoomService(&roomRepoStub{}, nil, nil)

		_, err := svc.UpdateRoom(context.Background(), UpdateRoomParams{
			Principal: Principal{UserID: "user"},
			RoomID:    "room-1",
		})

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("updates existing room", func(t *testing.T) {
		created := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
		now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		repo := &roomRepoStub{getRoom: Room{
			ID:        "room-1",
			Name:      "Sala Velha",
			Type:      RoomTypeStandard,
			Capacity:  10,
			OpenTime:  8 * 60,
			CloseTime: 18 * 60,
			CreatedAt: created,
			UpdatedAt: created,
		}}
		svc := NewRoomService(repo, nil, func() time.Time { return now })

		room, err := svc.UpdateRoom(context.Background(), UpdateRoomParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			RoomID:    "room-1",
			Input: RoomInput{
				Name:      "Lab Hopper",
				Type:      RoomTypeLaboratory,
				Capacity:  24,
				OpenTime:  7 * 60,
				CloseTime: 22 * 60,
			},
		})
		if err != nil {
			t.Fatalf("UpdateRoom returned error: %v", err)
		}

		if room.Name != "Lab Hopper" || room.Type != RoomTypeLaboratory || room.Capacity != 24 {
			t.Fatalf("unexpected updated room: %+v", room)
		}
		if !room.CreatedAt.Equal(created) {
			t.Fatalf("expected CreatedAt preserved, got %v", room.CreatedAt)
		}
		if !room.UpdatedAt.Equal(now) {
			t.Fatalf("expected UpdatedAt from clock, got %v", room.UpdatedAt)
		}
	})

	t.Run("propagates missing rooms", func(t *testing.T) {
		repo := &roomRepoStub{getErr: persistence.ErrNotFound}
		svc := NewRoomService(repo, nil, nil)

		_, err := svc.UpdateRoom(context.Background(), UpdateRoomParams{
			Principal: Principal{IsAdmin: true},
			RoomID:    "missing",
			Input:     RoomInput{Name: "Sala", Capacity: 5},
		})

		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRoomService_DeleteRoom(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewRoomService(&roomRepoStub{}, nil, nil)

		if err := svc.DeleteRoom(context.Background(), Principal{UserID: "user"}, "room-1"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("refuses rooms with active reservations", func(t *testing.T) {
		repo := &roomRepoStub{activeCount: 2}
		svc := NewRoomService(repo, nil, nil)

		err := svc.DeleteRoom(context.Background(), Principal{UserID: "admin", IsAdmin: true}, "room-1")
		if !errors.Is(err, ErrRoomInUse) {
			t.Fatalf("expected ErrRoomInUse, got %v", err)
		}
		if repo.deletedID != "" {
			t.Fatalf("expected no deletion, got %q", repo.deletedID)
		}
	})

	t.Run("deletes idle rooms", func(t *testing.T) {
		repo := &roomRepoStub{}
		svc := NewRoomService(repo, nil, nil)

		if err := svc.DeleteRoom(context.Background(), Principal{UserID: "admin", IsAdmin: true}, "room-1"); err != nil {
			t.Fatalf("DeleteRoom returned error: %v", err)
		}
		if repo.deletedID != "room-1" {
			t.Fatalf("expected room-1 deleted, got %q", repo.deletedID)
		}
	})
}

func TestRoomService_ListRooms(t *testing.T) {
	repo := &roomRepoStub{list: []Room{
		{ID: "b", Name: "sala beta"},
		{ID: "a", Name: "Sala Alfa"},
		{ID: "c", Name: "Sala Alfa"},
	}}
	svc := NewRoomService(repo, nil, nil)

	rooms, err := svc.ListRooms(context.Background(), Principal{UserID: "user"})
	if err != nil {
		t.Fatalf("ListRooms returned error: %v", err)
	}

	got := make([]string, 0, len(rooms))
	for _, room := range rooms {
		got = append(got, room.ID)
	}
	want := []string{"a", "c", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}
