package cmd

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/drivethru-sim/drivethru-sim/sim/restaurant"
)

// EnvPrefix prefixes environment overrides, e.g. DRIVETHRU_ARRIVAL_RATE.
const EnvPrefix = "DRIVETHRU"

// configFlag maps a CLI flag onto a restaurant.Config key.
type configFlag struct {
	flag  string
	key   string
	usage string
}

var configFlags = []configFlag{
	{"order-stations", "order_stations", "Number of order stations"},
	{"pay-stations", "pay_stations", "Number of pay windows"},
	{"pickup-stations", "pickup_stations", "Number of pickup windows"},
	{"arrival-rate", "arrival_rate", "Customer arrivals per minute"},
	{"mean-order-time", "mean_order_time", "Mean order time parameter (minutes)"},
	{"mean-food-prep-time", "mean_food_prep_time", "Mean food prep time parameter (minutes)"},
	{"mean-pay-time", "mean_pay_time", "Mean pay time parameter (minutes)"},
	{"mean-pickup-time", "mean_pickup_time", "Mean pickup time parameter (minutes)"},
	{"order-shape", "order_shape", "Weibull shape of order times"},
	{"prep-shape", "prep_shape", "Weibull shape of food prep times"},
	{"pay-shape", "pay_shape", "Weibull shape of pay times"},
	{"pickup-shape", "pickup_shape", "Weibull shape of pickup times"},
	{"order-line-slack", "order_line_slack", "Cars allowed in the order line beyond the station count before arrivals balk"},
	{"pay-backpressure", "pay_backpressure", "Pay line length that holds customers at the order station"},
	{"pickup-backpressure", "pickup_backpressure", "Pickup line length that holds customers at the pay window"},
	{"customers", "customers", "Number of customers to generate (0 = until horizon)"},
	{"horizon", "horizon", "Simulation horizon in minutes (0 = run until the line empties)"},
	{"seed", "seed", "Seed for the random streams"},
	{"trace", "trace", "Log every customer event"},
}

// registerConfigFlags adds one flag per configuration key to fs, using d for defaults.
func registerConfigFlags(fs *pflag.FlagSet, d restaurant.Config) {
	fs.Int("order-stations", d.OrderStations, "")
	fs.Int("pay-stations", d.PayStations, "")
	fs.Int("pickup-stations", d.PickupStations, "")
	fs.Float64("arrival-rate", d.ArrivalRate, "")
	fs.Float64("mean-order-time", d.MeanOrderTime, "")
	fs.Float64("mean-food-prep-time", d.MeanFoodPrepTime, "")
	fs.Float64("mean-pay-time", d.MeanPayTime, "")
	fs.Float64("mean-pickup-time", d.MeanPickupTime, "")
	fs.Float64("order-shape", d.OrderShape, "")
	fs.Float64("prep-shape", d.PrepShape, "")
	fs.Float64("pay-shape", d.PayShape, "")
	fs.Float64("pickup-shape", d.PickupShape, "")
	fs.Int("order-line-slack", d.OrderLineSlack, "")
	fs.Int("pay-backpressure", d.PayBackpressure, "")
	fs.Int("pickup-backpressure", d.PickupBackpressure, "")
	fs.Int("customers", d.Customers, "")
	fs.Float64("horizon", d.Horizon, "")
	fs.Int64("seed", d.Seed, "")
	fs.Bool("trace", d.Trace, "")
	for _, cf := range configFlags {
		fs.Lookup(cf.flag).Usage = cf.usage
	}
}

// bindConfigFlags binds every configuration flag in fs to its key in v.
// Only flags the user set take precedence over the other layers.
func bindConfigFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, cf := range configFlags {
		f := fs.Lookup(cf.flag)
		if f == nil {
			return fmt.Errorf("flag --%s is not registered", cf.flag)
		}
		if err := v.BindPFlag(cf.key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", cf.flag, err)
		}
	}
	return nil
}

// LoadConfig resolves the restaurant configuration from, lowest precedence
// first: base (usually a scenario preset), the YAML file at cfgFile (if
// non-empty), DRIVETHRU_* environment variables and flags bound to v.
// Unknown keys in the file are errors.
func LoadConfig(v *viper.Viper, cfgFile string, base restaurant.Config) (restaurant.Config, error) {
	defaults := map[string]interface{}{}
	if err := mapstructure.Decode(base, &defaults); err != nil {
		return restaurant.Config{}, fmt.Errorf("unable to flatten base config: %w", err)
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return restaurant.Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg restaurant.Config
	strict := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
	})
	if err := v.Unmarshal(&cfg, strict); err != nil {
		return restaurant.Config{}, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return restaurant.Config{}, err
	}
	return cfg, nil
}
