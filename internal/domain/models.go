// Package domain holds the entities of the data model: accounts,
// instruments, strategies, positions, orders, trades, market data,
// signals, settings and system logs. Every other package depends on
// these types but never mutates them directly — the repository layer
// is the sole writer of durable state.
package domain

import "time"

// AccountType distinguishes a virtual paper account from an
// external-broker tagged one.
type AccountType string

const (
	AccountTypeVirtual AccountType = "virtual"
)

// AccountStatus is the lifecycle state of an Account.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusInactive  AccountStatus = "inactive"
	AccountStatusSuspended AccountStatus = "suspended"
)

// Account is a virtual brokerage account.
type Account struct {
	ID          string
	Name        string
	Type        AccountType
	CashBalance float64
	Currency    string
	Status      AccountStatus
	StrategyID  *string
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether the account should be considered by workers.
func (a *Account) IsActive() bool {
	return !a.Deleted && a.Status == AccountStatusActive
}

// Instrument is a tradable equity symbol.
type Instrument struct {
	ID           int64
	Symbol       string
	Name         string
	Exchange     string
	Currency     string
	Active       bool
	Watchlist    bool
	OverallScore *float64
	RiskScore    *float64
	SectorBucket *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StrategyCategory is Long or Short.
type StrategyCategory string

const (
	StrategyCategoryLong  StrategyCategory = "Long"
	StrategyCategoryShort StrategyCategory = "Short"
)

// StockListMode selects how a strategy's universe is resolved.
type StockListMode string

const (
	StockListModeManual StockListMode = "Manual"
	StockListModeAI     StockListMode = "AI"
)

// Strategy defines how the trading bot picks a universe and parameters.
type Strategy struct {
	ID                string
	Name              string
	Description       string
	Category          StrategyCategory
	StrategyType      string
	StockListMode     StockListMode
	StockList         string // opaque serialized list: JSON array, CSV, or newline-separated
	StockListAIPrompt string
	Parameters        map[string]interface{}
	Active            bool
}

// Position is the (account, instrument) holding. Invariant: at most one
// row per (AccountID, InstrumentID).
type Position struct {
	ID                int64
	AccountID         string
	InstrumentID      int64
	Symbol            string
	Quantity          float64
	AverageEntryPrice float64
	CurrentPrice      float64
	UnrealizedPnL     float64
	RealizedPnL       float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderType is MARKET, LIMIT or STOP.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeStop   OrderType = "STOP"
)

// OrderSide is BUY or SELL.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderStatus tracks the monotone PENDING -> terminal transition.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// IsTerminal reports whether the status cannot transition further.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled || s == OrderStatusRejected
}

// Order is a simulated brokerage order.
type Order struct {
	ID               int64
	ExternalOrderID  string
	AccountID        string
	InstrumentID     int64
	Symbol           string
	StrategyID       *string
	Type             OrderType
	Side             OrderSide
	Quantity         float64
	LimitPrice       *float64
	StopPrice        *float64
	Status           OrderStatus
	FilledQuantity   float64
	AverageFillPrice *float64
	Commission       float64
	SubmittedAt      time.Time
	FilledAt         *time.Time
	CancelledAt      *time.Time
}

// Trade is a realized round-trip record, append-only.
type Trade struct {
	ID                int64
	AccountID         string
	InstrumentID      int64
	Symbol            string
	Side              OrderSide
	Quantity          float64
	EntryPrice        float64
	ExitPrice         float64
	GrossPnL          float64
	NetPnL            float64
	PercentagePnL     float64
	Commission        float64
	EntryTime         time.Time
	ExitTime          time.Time
	HoldingPeriodDays float64
}

// MarketDataInterval is the bar aggregation period.
type MarketDataInterval string

const (
	Interval1Min  MarketDataInterval = "1min"
	Interval5Min  MarketDataInterval = "5min"
	Interval1Hour MarketDataInterval = "1hour"
	Interval1Day  MarketDataInterval = "1day"
)

// MarketData is a single OHLCV bar. Invariant: at most one row per
// (InstrumentID, Timestamp, Interval).
type MarketData struct {
	ID           int64
	InstrumentID int64
	Timestamp    time.Time
	Interval     MarketDataInterval
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	VWAP         float64
	TradeCount   int64
}

// SignalType is BUY, SELL or HOLD.
type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
	SignalHold SignalType = "HOLD"
)

// TradingSignal is an append-only record of a trading-bot decision.
type TradingSignal struct {
	ID             int64
	InstrumentID   int64
	Symbol         string
	StrategyID     string
	Timestamp      time.Time
	SignalType     SignalType
	Strength       int
	Price          float64
	Confidence     float64
	IndicatorsUsed map[string]interface{}
	Reason         string
}

// SettingCategory groups related settings rows.
type SettingCategory string

const (
	SettingCategoryCredentials SettingCategory = "credentials"
	SettingCategoryAICache     SettingCategory = "ai_cache"
	SettingCategoryGeneral     SettingCategory = "general"
)

// Setting is a free-form name/value configuration row. Used for vendor
// credentials and the AI-generated stock-list cache.
type Setting struct {
	ID        int64
	Name      string
	Value     string
	Category  SettingCategory
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LogLevel is the severity of a SystemLog entry.
type LogLevel string

const (
	LogLevelDebug   LogLevel = "DEBUG"
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
)

// SystemLog is an append-only operational log row.
type SystemLog struct {
	ID        int64
	Level     LogLevel
	Module    string
	Message   string
	Details   string
	AccountID *string
	Timestamp time.Time
}
