package restaurant

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidConfig is wrapped by every error Config.Validate returns.
var ErrInvalidConfig = errors.New("invalid restaurant configuration")

// Config describes one drive-thru: station parallelism, stage-duration
// distributions, arrival rate, line thresholds and the termination condition.
// Times are in minutes.
type Config struct {
	OrderStations  int `mapstructure:"order_stations" yaml:"order_stations" validate:"gte=1"`
	PayStations    int `mapstructure:"pay_stations" yaml:"pay_stations" validate:"gte=1"`
	PickupStations int `mapstructure:"pickup_stations" yaml:"pickup_stations" validate:"gte=1"`

	ArrivalRate float64 `mapstructure:"arrival_rate" yaml:"arrival_rate" validate:"finite,gt=0"` // customers per minute

	MeanOrderTime    float64 `mapstructure:"mean_order_time" yaml:"mean_order_time" validate:"finite,gt=0"`
	MeanFoodPrepTime float64 `mapstructure:"mean_food_prep_time" yaml:"mean_food_prep_time" validate:"finite,gt=0"`
	MeanPayTime      float64 `mapstructure:"mean_pay_time" yaml:"mean_pay_time" validate:"finite,gt=0"`
	MeanPickupTime   float64 `mapstructure:"mean_pickup_time" yaml:"mean_pickup_time" validate:"finite,gt=0"`

	// Weibull shape parameters per stage.
	OrderShape  float64 `mapstructure:"order_shape" yaml:"order_shape" validate:"finite,gt=0"`
	PrepShape   float64 `mapstructure:"prep_shape" yaml:"prep_shape" validate:"finite,gt=0"`
	PayShape    float64 `mapstructure:"pay_shape" yaml:"pay_shape" validate:"finite,gt=0"`
	PickupShape float64 `mapstructure:"pickup_shape" yaml:"pickup_shape" validate:"finite,gt=0"`

	// A customer balks when the order wait line is longer than
	// OrderLineSlack + OrderStations.
	OrderLineSlack int `mapstructure:"order_line_slack" yaml:"order_line_slack" validate:"gte=0"`
	// An upstream station is held while the downstream wait line is at or
	// above its backpressure limit.
	PayBackpressure    int `mapstructure:"pay_backpressure" yaml:"pay_backpressure" validate:"gte=1"`
	PickupBackpressure int `mapstructure:"pickup_backpressure" yaml:"pickup_backpressure" validate:"gte=1"`

	Customers int     `mapstructure:"customers" yaml:"customers" validate:"gte=0"`       // 0 = keep arriving until the horizon
	Horizon   float64 `mapstructure:"horizon" yaml:"horizon" validate:"finite,gte=0"` // 0 = run until no events remain

	Seed  int64 `mapstructure:"seed" yaml:"seed"`
	Trace bool  `mapstructure:"trace" yaml:"trace"` // log every customer event at debug level
}

// DefaultConfig returns the single-lane drive-thru the simulator models by default.
func DefaultConfig() Config {
	return Config{
		OrderStations:      1,
		PayStations:        1,
		PickupStations:     1,
		ArrivalRate:        5.0,
		MeanOrderTime:      3.0,
		MeanFoodPrepTime:   6.0,
		MeanPayTime:        2.0,
		MeanPickupTime:     2.0,
		OrderShape:         1.5,
		PrepShape:          2.0,
		PayShape:           1.5,
		PickupShape:        1.5,
		OrderLineSlack:     7,
		PayBackpressure:    5,
		PickupBackpressure: 2,
		Customers:          1000,
		Seed:               42,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		if err := validate.RegisterValidation("finite", validateFinite); err != nil {
			panic(fmt.Sprintf("registering finite validation: %v", err))
		}
		validate.RegisterStructValidation(validateTermination, Config{})

		// Report keys the way users write them.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

func validateFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validateTermination(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if cfg.Customers == 0 && cfg.Horizon == 0 {
		sl.ReportError(cfg.Customers, "customers", "Customers", "terminates", "")
	}
}

// Validate checks every field and returns an error wrapping ErrInvalidConfig
// that lists each offending key.
func (c Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s %s", e.Field(), describe(e)))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be at least " + e.Param()
	case "finite":
		return "must be a finite number"
	case "terminates":
		return "and horizon cannot both be 0"
	default:
		return "is invalid"
	}
}
