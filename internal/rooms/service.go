package rooms

import "context"

// RepositoryPort defines data access methods for rooms and housekeeping.
type RepositoryPort interface {
	CreateRoom(ctx context.Context, in CreateRoomInput) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	ListStatuses(ctx context.Context) ([]RoomStatus, error)
	UpdateStatus(ctx context.Context, roomNumber string, status HousekeepingStatus, notes string) error
}

// Service handles room master data and housekeeping state.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateRoom validates and registers a room.
func (s *Service) CreateRoom(ctx context.Context, in CreateRoomInput) (Room, error) {
	if err := in.Validate(); err != nil {
		return Room{}, err
	}
	return s.repo.CreateRoom(ctx, in)
}

// ListRooms returns all rooms.
func (s *Service) ListRooms(ctx context.Context) ([]Room, error) {
	return s.repo.ListRooms(ctx)
}

// ListStatuses returns housekeeping statuses for all rooms.
func (s *Service) ListStatuses(ctx context.Context) ([]RoomStatus, error) {
	return s.repo.ListStatuses(ctx)
}

// UpdateStatus sets the housekeeping state for a room.
func (s *Service) UpdateStatus(ctx context.Context, roomNumber string, status HousekeepingStatus, notes string) error {
	if !IsValidHousekeepingStatus(status) {
		return ErrInvalidStatus
	}
	return s.repo.UpdateStatus(ctx, roomNumber, status, notes)
}
