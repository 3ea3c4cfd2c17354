package grpc

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"barberbook/backend/internal/domain"
	"barberbook/backend/internal/service/shops"
)

func (s *Server) CreateShop(ctx context.Context, req *CreateShopRequest) (*ShopResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateShop"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	shop, err := s.shops.Create(ctx, shops.CreateInput{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		WorkingDays: req.WorkingDays,
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
	})
	if err != nil {
		return nil, s.fail(log.With(slog.String("owner_id", req.OwnerID)), err, "shop create", "owner")
	}

	log.Info("shop created", slog.String("shop_id", shop.ID), slog.String("owner_id", shop.OwnerID))
	return &ShopResponse{Shop: toWireShop(shop)}, nil
}

func (s *Server) GetShop(ctx context.Context, req *ShopIDRequest) (*ShopResponse, error) {
	log := s.log.With(slog.String("rpc", "GetShop"))

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	shop, err := s.shops.Get(ctx, req.ShopID)
	if err != nil {
		return nil, s.fail(log.With(slog.String("shop_id", req.ShopID)), err, "shop get", "shop")
	}
	return &ShopResponse{Shop: toWireShop(shop)}, nil
}

func (s *Server) ListShops(ctx context.Context, _ *Empty) (*ListShopsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListShops"))

	list, err := s.shops.List(ctx)
	if err != nil {
		return nil, s.fail(log, err, "shops list", "shops")
	}
	out := make([]*Shop, 0, len(list))
	for _, shop := range list {
		out = append(out, toWireShop(shop))
	}
	log.Debug("shops listed", slog.Int("count", len(out)))
	return &ListShopsResponse{Shops: out}, nil
}

func (s *Server) UpdateShopHours(ctx context.Context, req *UpdateShopHoursRequest) (*ShopResponse, error) {
	log := s.log.With(slog.String("rpc", "UpdateShopHours"))

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	log = log.With(slog.String("shop_id", req.ShopID), slog.String("actor_id", req.ActorID))

	shop, err := s.shops.UpdateHours(ctx, shops.HoursInput{
		ShopID:      req.ShopID,
		ActorID:     req.ActorID,
		WorkingDays: req.WorkingDays,
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
	})
	if err != nil {
		return nil, s.fail(log, err, "shop hours update", "shop")
	}
	log.Info("shop hours updated", slog.String("opening_time", shop.OpeningTime), slog.String("closing_time", shop.ClosingTime))
	return &ShopResponse{Shop: toWireShop(shop)}, nil
}

func (s *Server) UpdateShopProfile(ctx context.Context, req *UpdateShopProfileRequest) (*ShopResponse, error) {
	log := s.log.With(slog.String("rpc", "UpdateShopProfile"))

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	log = log.With(slog.String("shop_id", req.ShopID), slog.String("actor_id", req.ActorID))

	shop, err := s.shops.UpdateProfile(ctx, shops.ProfileInput{
		ShopID:      req.ShopID,
		ActorID:     req.ActorID,
		Name:        req.Name,
		Description: req.Description,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
	})
	if err != nil {
		return nil, s.fail(log, err, "shop profile update", "shop")
	}
	log.Info("shop profile updated")
	return &ShopResponse{Shop: toWireShop(shop)}, nil
}

func (s *Server) SaveSchedule(ctx context.Context, req *SaveScheduleRequest) (*ShopResponse, error) {
	log := s.log.With(slog.String("rpc", "SaveSchedule"))

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	log = log.With(slog.String("shop_id", req.ShopID), slog.String("actor_id", req.ActorID))

	slots := make([]domain.TimeSlot, 0, len(req.Slots))
	for _, ts := range req.Slots {
		slots = append(slots, domain.TimeSlot{Time: ts.Time, DurationMinutes: ts.Duration})
	}
	shop, err := s.shops.SaveSchedule(ctx, req.ShopID, req.ActorID, slots)
	if err != nil {
		return nil, s.fail(log, err, "schedule save", "shop")
	}
	log.Info("schedule saved", slog.Int("slots", len(shop.AvailableTimeSlots)))
	return &ShopResponse{Shop: toWireShop(shop)}, nil
}

func (s *Server) SetShopActive(ctx context.Context, req *SetShopActiveRequest) (*ShopResponse, error) {
	log := s.log.With(slog.String("rpc", "SetShopActive"))

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	log = log.With(slog.String("shop_id", req.ShopID), slog.String("actor_id", req.ActorID))

	shop, err := s.shops.SetActive(ctx, req.ShopID, req.ActorID, req.Active)
	if err != nil {
		return nil, s.fail(log, err, "shop activation", "shop")
	}
	log.Info("shop activation changed", slog.Bool("active", shop.IsActive))
	return &ShopResponse{Shop: toWireShop(shop)}, nil
}

func (s *Server) JoinShop(ctx context.Context, req *JoinShopRequest) (*ShopResponse, error) {
	log := s.log.With(slog.String("rpc", "JoinShop"))

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	log = log.With(slog.String("barber_id", req.BarberID))

	shop, err := s.shops.Join(ctx, req.JoinCode, req.BarberID)
	if err != nil {
		return nil, s.fail(log, err, "shop join", "shop")
	}
	log.Info("barber joined shop", slog.String("shop_id", shop.ID))
	return &ShopResponse{Shop: toWireShop(shop)}, nil
}

func (s *Server) LeaveShop(ctx context.Context, req *LeaveShopRequest) (*ShopResponse, error) {
	log := s.log.With(slog.String("rpc", "LeaveShop"))

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	log = log.With(slog.String("shop_id", req.ShopID), slog.String("barber_id", req.BarberID))

	shop, err := s.shops.Leave(ctx, req.ShopID, req.BarberID)
	if err != nil {
		return nil, s.fail(log, err, "shop leave", "shop")
	}
	log.Info("barber left shop")
	return &ShopResponse{Shop: toWireShop(shop)}, nil
}

func (s *Server) TransferOwnership(ctx context.Context, req *TransferOwnershipRequest) (*ShopResponse, error) {
	log := s.log.With(slog.String("rpc", "TransferOwnership"))

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	log = log.With(slog.String("shop_id", req.ShopID), slog.String("actor_id", req.ActorID))

	shop, err := s.shops.TransferOwnership(ctx, req.ShopID, req.ActorID, req.NewOwnerID)
	if err != nil {
		return nil, s.fail(log, err, "ownership transfer", "shop")
	}
	log.Info("shop ownership transferred", slog.String("owner_id", shop.OwnerID))
	return &ShopResponse{Shop: toWireShop(shop)}, nil
}

func (s *Server) DeleteShop(ctx context.Context, req *DeleteShopRequest) (*Empty, error) {
	log := s.log.With(slog.String("rpc", "DeleteShop"))

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	log = log.With(slog.String("shop_id", req.ShopID), slog.String("actor_id", req.ActorID))

	if err := s.shops.Delete(ctx, req.ShopID, req.ActorID, req.Reason); err != nil {
		return nil, s.fail(log, err, "shop delete", "shop")
	}
	log.Info("shop deleted")
	return &Empty{}, nil
}

func (s *Server) ListStaff(ctx context.Context, req *ShopIDRequest) (*ListStaffResponse, error) {
	log := s.log.With(slog.String("rpc", "ListStaff"))

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	staff, err := s.shops.ListStaff(ctx, req.ShopID)
	if err != nil {
		return nil, s.fail(log.With(slog.String("shop_id", req.ShopID)), err, "staff list", "shop")
	}
	return &ListStaffResponse{Staff: toWireStaff(staff)}, nil
}

func (s *Server) ListNotifications(ctx context.Context, req *RecipientRequest) (*ListNotificationsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListNotifications"))

	if req == nil || req.RecipientID == "" {
		log.Warn("invalid request", slog.String("reason", "missing_recipient"))
		return nil, status.Error(codes.InvalidArgument, "recipient_id is required")
	}
	notes, err := s.inbox.ListForRecipient(ctx, req.RecipientID)
	if err != nil {
		return nil, s.fail(log, err, "notifications list", "notifications")
	}
	out := make([]*Notification, 0, len(notes))
	for _, n := range notes {
		out = append(out, toWireNotification(n))
	}
	return &ListNotificationsResponse{Notifications: out}, nil
}

func (s *Server) MarkNotificationRead(ctx context.Context, req *MarkNotificationReadRequest) (*Empty, error) {
	log := s.log.With(slog.String("rpc", "MarkNotificationRead"))

	if req == nil || req.RecipientID == "" {
		log.Warn("invalid request", slog.String("reason", "missing_recipient"))
		return nil, status.Error(codes.InvalidArgument, "recipient_id is required")
	}
	id, err := uuid.Parse(req.NotificationID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return nil, status.Error(codes.InvalidArgument, "notification_id must be a UUID")
	}
	if err := s.inbox.MarkRead(ctx, req.RecipientID, id); err != nil {
		return nil, s.fail(log.With(slog.String("notification_id", id.String())), err, "notification mark read", "notification")
	}
	return &Empty{}, nil
}

func (s *Server) MarkAllNotificationsRead(ctx context.Context, req *RecipientRequest) (*Empty, error) {
	log := s.log.With(slog.String("rpc", "MarkAllNotificationsRead"))

	if req == nil || req.RecipientID == "" {
		log.Warn("invalid request", slog.String("reason", "missing_recipient"))
		return nil, status.Error(codes.InvalidArgument, "recipient_id is required")
	}
	if err := s.inbox.MarkAllRead(ctx, req.RecipientID); err != nil {
		return nil, s.fail(log, err, "notifications mark all read", "notifications")
	}
	return &Empty{}, nil
}
