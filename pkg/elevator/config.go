package elevator

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds immutable bank configuration, read once at startup.
// Config는 시스템 시작 시 설정되며, 런타임 중에 변경되지 않습니다.
type Config struct {
	Cars             int           `yaml:"cars"`             // 차량 수
	MinFloor         int           `yaml:"minFloor"`         // 최저 층
	MaxFloor         int           `yaml:"maxFloor"`         // 최고 층
	TravelTime       time.Duration `yaml:"travelTime"`       // 한 층 이동 시간
	DoorOpenTime     time.Duration `yaml:"doorOpenTime"`     // 문 열림 유지 시간
	DispatchInterval time.Duration `yaml:"dispatchInterval"` // 배차 주기
	IdlePoll         time.Duration `yaml:"idlePoll"`         // 대기 차량 확인 주기
	StartFloors      []int         `yaml:"startFloors"`      // 차량별 시작 층 (비어 있으면 MinFloor)
	EventLogSize     int           `yaml:"eventLogSize"`
}

// DefaultConfig returns a four-car, ten-floor bank.
func DefaultConfig() Config {
	return Config{
		Cars:             4,
		MinFloor:         1,
		MaxFloor:         10,
		TravelTime:       5 * time.Second,
		DoorOpenTime:     5 * time.Second,
		DispatchInterval: 250 * time.Millisecond,
		IdlePoll:         defaultIdlePoll,
		StartFloors:      []int{1, 10, 3, 6},
		EventLogSize:     DefaultEventLogSize,
	}
}

// LoadConfig decodes a YAML file over DefaultConfig and validates the result.
// Keys missing from the file keep their defaults, except startFloors: without it every
// car starts at minFloor.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	cfg.StartFloors = nil

	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects inconsistent settings up front (Fail Fast).
func (c Config) Validate() error {
	if c.Cars < 1 {
		return fmt.Errorf("%w: cars must be >= 1, got %d", ErrInvalidConfig, c.Cars)
	}
	if c.MinFloor > c.MaxFloor {
		return fmt.Errorf("%w: MinFloor (%d) > MaxFloor (%d)", ErrInvalidConfig, c.MinFloor, c.MaxFloor)
	}
	if c.TravelTime <= 0 || c.DoorOpenTime <= 0 || c.DispatchInterval <= 0 {
		return fmt.Errorf("%w: travelTime, doorOpenTime and dispatchInterval must be positive", ErrInvalidConfig)
	}
	if len(c.StartFloors) != 0 && len(c.StartFloors) != c.Cars {
		return fmt.Errorf("%w: %d start floors for %d cars", ErrInvalidConfig, len(c.StartFloors), c.Cars)
	}
	bounds := c.Bounds()
	for i, f := range c.StartFloors {
		if !bounds.Contains(f) {
			return fmt.Errorf("%w: car %d start floor %d outside %d-%d", ErrInvalidConfig, i+1, f, c.MinFloor, c.MaxFloor)
		}
	}
	return nil
}

// Bounds returns the configured floor range.
func (c Config) Bounds() FloorRange {
	return FloorRange{Min: c.MinFloor, Max: c.MaxFloor}
}

// StartFloor returns the starting floor of the i-th car (zero-based).
func (c Config) StartFloor(i int) int {
	if i < len(c.StartFloors) {
		return c.StartFloors[i]
	}
	return c.MinFloor
}

// CarConfig projects the per-car settings.
func (c Config) CarConfig() CarConfig {
	return CarConfig{
		Bounds:       c.Bounds(),
		TravelTime:   c.TravelTime,
		DoorOpenTime: c.DoorOpenTime,
		IdlePoll:     c.IdlePoll,
	}
}
