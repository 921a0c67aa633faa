package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound signals a write against a row that does not exist.
//
// Single-row lookups report absence through their found return value instead.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists signals a unique-constraint violation, such as a
// duplicate user email.
var ErrAlreadyExists = errors.New("record already exists")

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User account statuses.
const (
	UserStatusActive  = "Active"
	UserStatusBlocked = "Blocked"
	UserStatusPending = "Pending"
)

// Product listing types.
const (
	ProductTypeNew      = "new"
	ProductTypePreowned = "preowned"
)

// Sell request statuses. Approval is the only transition that spawns a
// product row.
const (
	SellRequestPending  = "Pending"
	SellRequestApproved = "Approved"
	SellRequestRejected = "Rejected"
)

// Order payment statuses.
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
)

// User is a marketplace account. PasswordHash is opaque to this layer;
// hashing and verification belong to the caller.
type User struct {
	ID             string
	FullName       string
	Email          string
	Phone          string
	ProfilePicture string
	PasswordHash   string
	Role           string
	Status         string
	Rating         int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Product is a catalog listing. Price and OriginalPrice are decimal strings.
type Product struct {
	ID            string
	Name          string
	Category      string
	Type          string
	Price         string
	OriginalPrice string
	Grade         string
	ImageURLs     []string
	Description   string
	Specs         map[string]string
	Badge         string
	IsAvailable   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is one line of an order, denormalized at purchase time.
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"qty"`
	Price     string `json:"price"`
	Image     string `json:"image,omitempty"`
}

// Order belongs to one user. User is populated only when the query asked
// for it via IncludeUser.
type Order struct {
	ID                string
	UserID            string
	Items             []OrderItem
	TotalPrice        string
	PaymentStatus     string
	FulfillmentStatus string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	User              *User
}

// SellRequest is a user's offer to sell gear back to the marketplace.
type SellRequest struct {
	ID            string
	UserID        string
	FullName      string
	Email         string
	Category      string
	Title         string
	Description   string
	Price         string
	ContactMethod string
	ContactDetail string
	ImageURLs     []string
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	User          *User
}

// Address is a user shipping address. At most one address per user carries
// IsDefault, enforced by the service layer via a clear-then-set sequence.
type Address struct {
	ID         string
	UserID     string
	Title      string
	FullName   string
	Phone      string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
	IsDefault  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PaymentMethod is a saved card or UPI handle. Default uniqueness follows
// the same rule as Address.
type PaymentMethod struct {
	ID          string
	UserID      string
	Type        string
	CardLast4   string
	CardType    string
	CardHolder  string
	ExpiryMonth int
	ExpiryYear  int
	UpiID       string
	Nickname    string
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Review is a product review left by a user.
type Review struct {
	ID            string
	ProductID     string
	UserID        string
	Rating        int
	Comment       string
	ReviewerName  string
	ReviewerImage string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderTerm is one ORDER BY term. Terms are a slice, not a map, so the
// rendered clause order is deterministic.
type OrderTerm struct {
	Field string
	Desc  bool
}

// ListOptions shapes a dynamic list query. A nil Take means no LIMIT; the
// caller is expected to bound unpaged reads deliberately. Skip is applied
// only together with Take.
type ListOptions struct {
	Order []OrderTerm
	Take  *int
	Skip  int
}

// Take returns a ListOptions limited to n rows.
func Take(n int) *int { return &n }

// Filter structs hold optional equality predicates. A nil field is omitted;
// a set field becomes one AND-ed `column = ?` predicate. Predicate order is
// fixed by each filter's declaration order, never by map iteration.

// UserFilter narrows user list queries.
type UserFilter struct {
	Role   *string
	Status *string
}

// ProductFilter narrows product list queries. Category+Type+IsAvailable
// together hit the composite index created for the catalog read path.
type ProductFilter struct {
	Category    *string
	Type        *string
	Grade       *string
	Badge       *string
	IsAvailable *bool
}

// OrderFilter narrows order list queries.
type OrderFilter struct {
	UserID            *string
	PaymentStatus     *string
	FulfillmentStatus *string
}

// SellRequestFilter narrows sell request list queries.
type SellRequestFilter struct {
	UserID *string
	Status *string
}

// AddressFilter narrows address list and updateMany queries.
type AddressFilter struct {
	UserID    *string
	IsDefault *bool
}

// PaymentMethodFilter narrows payment method list and updateMany queries.
type PaymentMethodFilter struct {
	UserID    *string
	Type      *string
	IsDefault *bool
}

// ReviewFilter narrows review list queries.
type ReviewFilter struct {
	ProductID *string
	UserID    *string
}

// Patch structs carry partial updates. Only set (non-nil) fields reach the
// SET clause; id and createdAt are never writable and updatedAt is always
// refreshed by the store.

// UserPatch updates user fields.
type UserPatch struct {
	FullName       *string
	Phone          *string
	ProfilePicture *string
	PasswordHash   *string
	Role           *string
	Status         *string
	Rating         *int
}

// ProductPatch updates product fields.
type ProductPatch struct {
	Name          *string
	Category      *string
	Type          *string
	Price         *string
	OriginalPrice *string
	Grade         *string
	ImageURLs     *[]string
	Description   *string
	Specs         *map[string]string
	Badge         *string
	IsAvailable   *bool
}

// OrderPatch updates order fields.
type OrderPatch struct {
	Items             *[]OrderItem
	TotalPrice        *string
	PaymentStatus     *string
	FulfillmentStatus *string
}

// SellRequestPatch updates sell request fields.
type SellRequestPatch struct {
	Title         *string
	Description   *string
	Price         *string
	ContactDetail *string
	Status        *string
}

// AddressPatch updates address fields.
type AddressPatch struct {
	Title      *string
	FullName   *string
	Phone      *string
	Street     *string
	City       *string
	State      *string
	PostalCode *string
	Country    *string
	IsDefault  *bool
}

// PaymentMethodPatch updates payment method fields.
type PaymentMethodPatch struct {
	Nickname  *string
	IsDefault *bool
}

// ReviewPatch updates review fields.
type ReviewPatch struct {
	Rating  *int
	Comment *string
}

// OrderListOptions extends ListOptions with relation attachment.
type OrderListOptions struct {
	ListOptions
	IncludeUser bool
}

// SellRequestListOptions extends ListOptions with relation attachment.
type SellRequestListOptions struct {
	ListOptions
	IncludeUser bool
}

// Store is the full marketplace persistence contract.
//
// Create operations generate the row id and both timestamps and return the
// row as re-read after insert, so callers always observe exactly what was
// persisted. Update operations return the re-read row and ErrNotFound when
// no row matched. Get operations report absence via their found return.
type Store interface {
	Close() error

	GetUser(ctx context.Context, id string) (User, bool, error)
	GetUserByEmail(ctx context.Context, email string) (User, bool, error)
	ListUsers(ctx context.Context, filter UserFilter, opts ListOptions) ([]User, error)
	CreateUser(ctx context.Context, data User) (User, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (User, error)
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context, filter UserFilter) (int, error)

	GetProduct(ctx context.Context, id string) (Product, bool, error)
	ListProducts(ctx context.Context, filter ProductFilter, opts ListOptions) ([]Product, error)
	CreateProduct(ctx context.Context, data Product) (Product, error)
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context, filter ProductFilter) (int, error)

	GetOrder(ctx context.Context, id string, includeUser bool) (Order, bool, error)
	ListOrders(ctx context.Context, filter OrderFilter, opts OrderListOptions) ([]Order, error)
	CreateOrder(ctx context.Context, data Order) (Order, error)
	UpdateOrder(ctx context.Context, id string, patch OrderPatch) (Order, error)
	DeleteOrder(ctx context.Context, id string) error
	CountOrders(ctx context.Context, filter OrderFilter) (int, error)
	SumOrderTotals(ctx context.Context) (float64, error)

	GetSellRequest(ctx context.Context, id string, includeUser bool) (SellRequest, bool, error)
	ListSellRequests(ctx context.Context, filter SellRequestFilter, opts SellRequestListOptions) ([]SellRequest, error)
	CreateSellRequest(ctx context.Context, data SellRequest) (SellRequest, error)
	UpdateSellRequest(ctx context.Context, id string, patch SellRequestPatch) (SellRequest, error)
	DeleteSellRequest(ctx context.Context, id string) error
	CountSellRequests(ctx context.Context, filter SellRequestFilter) (int, error)

	GetAddress(ctx context.Context, id string) (Address, bool, error)
	ListAddresses(ctx context.Context, filter AddressFilter, opts ListOptions) ([]Address, error)
	CreateAddress(ctx context.Context, data Address) (Address, error)
	UpdateAddress(ctx context.Context, id string, patch AddressPatch) (Address, error)
	UpdateAddresses(ctx context.Context, filter AddressFilter, patch AddressPatch) error
	DeleteAddress(ctx context.Context, id string) error
	CountAddresses(ctx context.Context, filter AddressFilter) (int, error)

	GetPaymentMethod(ctx context.Context, id string) (PaymentMethod, bool, error)
	ListPaymentMethods(ctx context.Context, filter PaymentMethodFilter, opts ListOptions) ([]PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, data PaymentMethod) (PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, id string, patch PaymentMethodPatch) (PaymentMethod, error)
	UpdatePaymentMethods(ctx context.Context, filter PaymentMethodFilter, patch PaymentMethodPatch) error
	DeletePaymentMethod(ctx context.Context, id string) error
	CountPaymentMethods(ctx context.Context, filter PaymentMethodFilter) (int, error)

	GetReview(ctx context.Context, id string) (Review, bool, error)
	ListReviews(ctx context.Context, filter ReviewFilter, opts ListOptions) ([]Review, error)
	CreateReview(ctx context.Context, data Review) (Review, error)
	UpdateReview(ctx context.Context, id string, patch ReviewPatch) (Review, error)
	DeleteReview(ctx context.Context, id string) error
	CountReviews(ctx context.Context, filter ReviewFilter) (int, error)
}
