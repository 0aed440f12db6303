package api

import (
	"github.com/logitrack/dispatch/internal/geo"
)

// Delivery status tags as served by the backend.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDelivered  = "delivered"
)

// User roles recognised by the dashboard.
const (
	RoleAdmin     = "admin"
	RoleCourier   = "courier"
	RoleWarehouse = "warehouse"
	RoleGuest     = "guest"
)

// Courier mirrors an entry of /api/active-couriers. Coordinates are nullable
// until the courier's first location report and occasionally arrive as quoted
// strings; geo.Degrees absorbs both.
type Courier struct {
	ID        int64       `json:"courier_id"`
	Name      string      `json:"name"`
	Latitude  geo.Degrees `json:"latitude"`
	Longitude geo.Degrees `json:"longitude"`
	Active    bool        `json:"active"`
}

// Key implements state.Keyed.
func (c Courier) Key() int64 { return c.ID }

// Position returns the courier's location when both components are usable.
// Entries without a position stay in list views but are skipped on the map.
func (c Courier) Position() (geo.LatLng, bool) {
	return geo.Position(c.Latitude, c.Longitude)
}

// Destination mirrors /api/couriers/{id}/destination.
type Destination struct {
	Address   string      `json:"destination_address"`
	Latitude  geo.Degrees `json:"latitude"`
	Longitude geo.Degrees `json:"longitude"`
}

// Position returns the destination coordinates when usable.
func (d Destination) Position() (geo.LatLng, bool) {
	return geo.Position(d.Latitude, d.Longitude)
}

// Delivery mirrors /api/deliveries entries. CourierID is nil while the
// delivery is unassigned.
type Delivery struct {
	ID               int64             `json:"delivery_id"`
	Address          string            `json:"address"`
	Latitude         geo.Degrees       `json:"latitude"`
	Longitude        geo.Degrees       `json:"longitude"`
	Status           string            `json:"status"`
	CourierID        *int64            `json:"courier_id"`
	StartTime        string            `json:"start_time"`
	EstimatedSeconds int64             `json:"estimated_seconds"`
	CompletedTime    string            `json:"completed_time"`
	Products         []DeliveryProduct `json:"products,omitempty"`
}

// Key implements state.Keyed.
func (d Delivery) Key() int64 { return d.ID }

// Position returns the destination coordinates when usable.
func (d Delivery) Position() (geo.LatLng, bool) {
	return geo.Position(d.Latitude, d.Longitude)
}

// DeliveryProduct is a line item of a delivery, as served by
// /api/deliveries-with-products.
type DeliveryProduct struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"product_name"`
	Quantity  int    `json:"quantity"`
}

// NewDelivery is the payload for POST /api/deliveries/add.
type NewDelivery struct {
	Address  string            `json:"address"`
	Products []DeliveryProduct `json:"products"`
}

// Order mirrors /api/orders entries.
type Order struct {
	ID        int64       `json:"order_id"`
	Address   string      `json:"address"`
	Latitude  geo.Degrees `json:"latitude"`
	Longitude geo.Degrees `json:"longitude"`
	Status    string      `json:"status"`
	CourierID *int64      `json:"courier_id"`
}

// Key implements state.Keyed.
func (o Order) Key() int64 { return o.ID }

// Position returns the order destination when usable.
func (o Order) Position() (geo.LatLng, bool) {
	return geo.Position(o.Latitude, o.Longitude)
}

// Product is a warehouse line item.
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Location string `json:"location"`
}

// Key implements state.Keyed.
func (p Product) Key() int64 { return p.ID }

// User mirrors /api/users entries.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Key implements state.Keyed.
func (u User) Key() int64 { return u.ID }

// LocationReport is the payload for POST /api/courier-location.
type LocationReport struct {
	CourierID int64   `json:"courier_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Credentials is the payload for POST /api/auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the payload for POST /api/auth/register.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the session material returned by the auth endpoints.
// CourierID is zero for non-courier accounts.
type AuthResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	CourierID int64  `json:"courier_id"`
	Message   string `json:"message"`
}

// DeliveryStats mirrors /api/delivery-stats.
type DeliveryStats struct {
	InProgress     int `json:"in_progress"`
	DeliveredToday int `json:"delivered_today"`
	Delayed        int `json:"delayed"`
}

// OrderStats mirrors /api/order-stats.
type OrderStats struct {
	Pending   int `json:"pending"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// WarehouseStats mirrors /api/warehouse-stats.
type WarehouseStats struct {
	Products  int `json:"products"`
	FreeSlots int `json:"free_slots"`
	Restock   int `json:"restock"`
}

// CourierStats mirrors /api/courier-stats.
type CourierStats struct {
	Active             int `json:"active"`
	AvgDeliveryMinutes int `json:"avg_delivery_minutes"`
}

// EmployeeStats mirrors /api/employee-stats.
type EmployeeStats struct {
	Total       int `json:"total"`
	Couriers    int `json:"couriers"`
	Warehouse   int `json:"warehouse"`
	Dispatchers int `json:"dispatchers"`
}

// UserStats mirrors /api/user-stats.
type UserStats struct {
	Total       int `json:"total"`
	Unconfirmed int `json:"unconfirmed"`
}

// Stats bundles every aggregate the dashboard view renders. The pollers fill
// it with one call per endpoint; a failing endpoint leaves its section at the
// previous value.
type Stats struct {
	Delivery  DeliveryStats
	Order     OrderStats
	Warehouse WarehouseStats
	Courier   CourierStats
	Employee  EmployeeStats
	User      UserStats
}

// Key implements state.Keyed so a Stats snapshot can live in the same store
// machinery as the collections. There is only ever one Stats row.
func (Stats) Key() int64 { return 0 }
