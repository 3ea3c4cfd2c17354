package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "barberbook.v1.Scheduling"

// SchedulingServer is the server API for the barberbook.v1.Scheduling service.
type SchedulingServer interface {
	CreateAppointment(context.Context, *CreateAppointmentRequest) (*AppointmentResponse, error)
	RescheduleAppointment(context.Context, *RescheduleAppointmentRequest) (*AppointmentResponse, error)
	SetAppointmentStatus(context.Context, *SetAppointmentStatusRequest) (*AppointmentResponse, error)
	DeleteAppointment(context.Context, *AppointmentIDRequest) (*Empty, error)
	GetAppointment(context.Context, *AppointmentIDRequest) (*AppointmentResponse, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	AvailableSlots(context.Context, *AvailableSlotsRequest) (*AvailableSlotsResponse, error)

	CreateShop(context.Context, *CreateShopRequest) (*ShopResponse, error)
	GetShop(context.Context, *ShopIDRequest) (*ShopResponse, error)
	ListShops(context.Context, *Empty) (*ListShopsResponse, error)
	UpdateShopHours(context.Context, *UpdateShopHoursRequest) (*ShopResponse, error)
	UpdateShopProfile(context.Context, *UpdateShopProfileRequest) (*ShopResponse, error)
	SaveSchedule(context.Context, *SaveScheduleRequest) (*ShopResponse, error)
	SetShopActive(context.Context, *SetShopActiveRequest) (*ShopResponse, error)
	JoinShop(context.Context, *JoinShopRequest) (*ShopResponse, error)
	LeaveShop(context.Context, *LeaveShopRequest) (*ShopResponse, error)
	TransferOwnership(context.Context, *TransferOwnershipRequest) (*ShopResponse, error)
	DeleteShop(context.Context, *DeleteShopRequest) (*Empty, error)
	ListStaff(context.Context, *ShopIDRequest) (*ListStaffResponse, error)

	ListNotifications(context.Context, *RecipientRequest) (*ListNotificationsResponse, error)
	MarkNotificationRead(context.Context, *MarkNotificationReadRequest) (*Empty, error)
	MarkAllNotificationsRead(context.Context, *RecipientRequest) (*Empty, error)
}

var Scheduling_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulingServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateAppointment", SchedulingServer.CreateAppointment),
		unary("RescheduleAppointment", SchedulingServer.RescheduleAppointment),
		unary("SetAppointmentStatus", SchedulingServer.SetAppointmentStatus),
		unary("DeleteAppointment", SchedulingServer.DeleteAppointment),
		unary("GetAppointment", SchedulingServer.GetAppointment),
		unary("ListAppointments", SchedulingServer.ListAppointments),
		unary("AvailableSlots", SchedulingServer.AvailableSlots),
		unary("CreateShop", SchedulingServer.CreateShop),
		unary("GetShop", SchedulingServer.GetShop),
		unary("ListShops", SchedulingServer.ListShops),
		unary("UpdateShopHours", SchedulingServer.UpdateShopHours),
		unary("UpdateShopProfile", SchedulingServer.UpdateShopProfile),
		unary("SaveSchedule", SchedulingServer.SaveSchedule),
		unary("SetShopActive", SchedulingServer.SetShopActive),
		unary("JoinShop", SchedulingServer.JoinShop),
		unary("LeaveShop", SchedulingServer.LeaveShop),
		unary("TransferOwnership", SchedulingServer.TransferOwnership),
		unary("DeleteShop", SchedulingServer.DeleteShop),
		unary("ListStaff", SchedulingServer.ListStaff),
		unary("ListNotifications", SchedulingServer.ListNotifications),
		unary("MarkNotificationRead", SchedulingServer.MarkNotificationRead),
		unary("MarkAllNotificationsRead", SchedulingServer.MarkAllNotificationsRead),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "barberbook/v1/scheduling.proto",
}

func RegisterSchedulingServer(s grpc.ServiceRegistrar, srv SchedulingServer) {
	s.RegisterService(&Scheduling_ServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary[Req, Resp any](name string, call func(SchedulingServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(SchedulingServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(SchedulingServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Client calls the Scheduling service using the JSON content-subtype.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *Client, name string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, fullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c, "CreateAppointment", in, opts)
}

func (c *Client) RescheduleAppointment(ctx context.Context, in *RescheduleAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c, "RescheduleAppointment", in, opts)
}

func (c *Client) SetAppointmentStatus(ctx context.Context, in *SetAppointmentStatusRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c, "SetAppointmentStatus", in, opts)
}

func (c *Client) DeleteAppointment(ctx context.Context, in *AppointmentIDRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "DeleteAppointment", in, opts)
}

func (c *Client) GetAppointment(ctx context.Context, in *AppointmentIDRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c, "GetAppointment", in, opts)
}

func (c *Client) ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	return invoke[ListAppointmentsResponse](ctx, c, "ListAppointments", in, opts)
}

func (c *Client) AvailableSlots(ctx context.Context, in *AvailableSlotsRequest, opts ...grpc.CallOption) (*AvailableSlotsResponse, error) {
	return invoke[AvailableSlotsResponse](ctx, c, "AvailableSlots", in, opts)
}

func (c *Client) CreateShop(ctx context.Context, in *CreateShopRequest, opts ...grpc.CallOption) (*ShopResponse, error) {
	return invoke[ShopResponse](ctx, c, "CreateShop", in, opts)
}

func (c *Client) GetShop(ctx context.Context, in *ShopIDRequest, opts ...grpc.CallOption) (*ShopResponse, error) {
	return invoke[ShopResponse](ctx, c, "GetShop", in, opts)
}

func (c *Client) ListShops(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListShopsResponse, error) {
	return invoke[ListShopsResponse](ctx, c, "ListShops", in, opts)
}

func (c *Client) UpdateShopHours(ctx context.Context, in *UpdateShopHoursRequest, opts ...grpc.CallOption) (*ShopResponse, error) {
	return invoke[ShopResponse](ctx, c, "UpdateShopHours", in, opts)
}

func (c *Client) UpdateShopProfile(ctx context.Context, in *UpdateShopProfileRequest, opts ...grpc.CallOption) (*ShopResponse, error) {
	return invoke[ShopResponse](ctx, c, "UpdateShopProfile", in, opts)
}

func (c *Client) SaveSchedule(ctx context.Context, in *SaveScheduleRequest, opts ...grpc.CallOption) (*ShopResponse, error) {
	return invoke[ShopResponse](ctx, c, "SaveSchedule", in, opts)
}

func (c *Client) SetShopActive(ctx context.Context, in *SetShopActiveRequest, opts ...grpc.CallOption) (*ShopResponse, error) {
	return invoke[ShopResponse](ctx, c, "SetShopActive", in, opts)
}

func (c *Client) JoinShop(ctx context.Context, in *JoinShopRequest, opts ...grpc.CallOption) (*ShopResponse, error) {
	return invoke[ShopResponse](ctx, c, "JoinShop", in, opts)
}

func (c *Client) LeaveShop(ctx context.Context, in *LeaveShopRequest, opts ...grpc.CallOption) (*ShopResponse, error) {
	return invoke[ShopResponse](ctx, c, "LeaveShop", in, opts)
}

func (c *Client) TransferOwnership(ctx context.Context, in *TransferOwnershipRequest, opts ...grpc.CallOption) (*ShopResponse, error) {
	return invoke[ShopResponse](ctx, c, "TransferOwnership", in, opts)
}

func (c *Client) DeleteShop(ctx context.Context, in *DeleteShopRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "DeleteShop", in, opts)
}

func (c *Client) ListStaff(ctx context.Context, in *ShopIDRequest, opts ...grpc.CallOption) (*ListStaffResponse, error) {
	return invoke[ListStaffResponse](ctx, c, "ListStaff", in, opts)
}

func (c *Client) ListNotifications(ctx context.Context, in *RecipientRequest, opts ...grpc.CallOption) (*ListNotificationsResponse, error) {
	return invoke[ListNotificationsResponse](ctx, c, "ListNotifications", in, opts)
}

func (c *Client) MarkNotificationRead(ctx context.Context, in *MarkNotificationReadRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "MarkNotificationRead", in, opts)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context, in *RecipientRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c, "MarkAllNotificationsRead", in, opts)
}
