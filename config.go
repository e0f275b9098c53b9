package server

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultWorldSeed = "duel"

// WorldConfig captures the knobs used when building a match.
type WorldConfig struct {
	PlayerArchetype Archetype  `json:"playerArchetype" yaml:"playerArchetype"`
	EnemyArchetype  Archetype  `json:"enemyArchetype" yaml:"enemyArchetype"`
	Obstacles       bool       `json:"obstacles" yaml:"obstacles"`
	Seed            string     `json:"seed" yaml:"seed"`
	Stats           StatTables `json:"-" yaml:"archetypes"`
}

// normalized returns a config with defaults applied.
func (cfg WorldConfig) normalized() WorldConfig {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = defaultWorldSeed
	}
	if _, ok := parseArchetype(string(normalized.PlayerArchetype)); !ok {
		normalized.PlayerArchetype = ArchetypeBruiser
	}
	if _, ok := parseArchetype(string(normalized.EnemyArchetype)); !ok {
		normalized.EnemyArchetype = ArchetypePyro
	}
	if normalized.Stats.isZero() {
		normalized.Stats = DefaultStatTables()
	}
	return normalized
}

// defaultWorldConfig builds the stock duel with default balance numbers.
func defaultWorldConfig() WorldConfig {
	return WorldConfig{
		PlayerArchetype: ArchetypeBruiser,
		EnemyArchetype:  ArchetypePyro,
		Obstacles:       true,
		Seed:            defaultWorldSeed,
		Stats:           DefaultStatTables(),
	}
}

// StatTables holds the balance numbers for every archetype. The tables are
// static input to the simulation; nothing in the core mutates them.
type StatTables struct {
	Pyro    ArchetypeStats `json:"pyro" yaml:"pyro"`
	Gunner  ArchetypeStats `json:"gunner" yaml:"gunner"`
	Bruiser ArchetypeStats `json:"bruiser" yaml:"bruiser"`
	Stray   ArchetypeStats `json:"stray" yaml:"stray"`
}

func (t StatTables) isZero() bool {
	return t.Pyro.MaxHealth == 0 && t.Gunner.MaxHealth == 0 &&
		t.Bruiser.MaxHealth == 0 && t.Stray.MaxHealth == 0
}

// For returns the stat block for an archetype.
func (t StatTables) For(archetype Archetype) ArchetypeStats {
	switch archetype {
	case ArchetypePyro:
		return t.Pyro
	case ArchetypeGunner:
		return t.Gunner
	case ArchetypeStray:
		return t.Stray
	default:
		return t.Bruiser
	}
}

// ArchetypeStats is one archetype's stat block. Only the kit section that
// matches the archetype tag is meaningful; the rest stay zero.
type ArchetypeStats struct {
	MaxHealth float64 `json:"maxHealth" yaml:"maxHealth"`
	Speed     float64 `json:"speed" yaml:"speed"`
	Mass      float64 `json:"mass" yaml:"mass"`
	Radius    float64 `json:"radius" yaml:"radius"`

	Pyro    PyroStats    `json:"pyroKit,omitempty" yaml:"pyroKit,omitempty"`
	Gunner  GunnerStats  `json:"gunnerKit,omitempty" yaml:"gunnerKit,omitempty"`
	Bruiser BruiserStats `json:"bruiserKit,omitempty" yaml:"bruiserKit,omitempty"`
	Stray   StrayStats   `json:"strayKit,omitempty" yaml:"strayKit,omitempty"`
}

// PyroStats tunes the heat-resource flamethrower kit.
type PyroStats struct {
	HeatMax               float64 `json:"heatMax" yaml:"heatMax"`
	HeatPerSecond         float64 `json:"heatPerSecond" yaml:"heatPerSecond"`
	CoolPerSecond         float64 `json:"coolPerSecond" yaml:"coolPerSecond"`
	OverheatCoolPerSecond float64 `json:"overheatCoolPerSecond" yaml:"overheatCoolPerSecond"`

	FlameDPS           float64 `json:"flameDps" yaml:"flameDps"`
	FlameReachMin      float64 `json:"flameReachMin" yaml:"flameReachMin"`
	FlameReachMax      float64 `json:"flameReachMax" yaml:"flameReachMax"`
	FlameBaseHalfAngle float64 `json:"flameBaseHalfAngle" yaml:"flameBaseHalfAngle"`

	FlaskDamage     float64 `json:"flaskDamage" yaml:"flaskDamage"`
	FlaskRadius     float64 `json:"flaskRadius" yaml:"flaskRadius"`
	FlaskFlightTime float64 `json:"flaskFlightTime" yaml:"flaskFlightTime"`
	FlaskCooldown   float64 `json:"flaskCooldown" yaml:"flaskCooldown"`

	PoolDuration    float64 `json:"poolDuration" yaml:"poolDuration"`
	PoolRadius      float64 `json:"poolRadius" yaml:"poolRadius"`
	PoolDPS         float64 `json:"poolDps" yaml:"poolDps"`
	PoolOwnerHealPS float64 `json:"poolOwnerHealPs" yaml:"poolOwnerHealPs"`

	DetonateDamage    float64 `json:"detonateDamage" yaml:"detonateDamage"`
	DetonateKnockback float64 `json:"detonateKnockback" yaml:"detonateKnockback"`
	DetonateCooldown  float64 `json:"detonateCooldown" yaml:"detonateCooldown"`
}

// GunnerStats tunes the dual-mode ammo kit and its drone.
type GunnerStats struct {
	RifleDamage    float64 `json:"rifleDamage" yaml:"rifleDamage"`
	RifleSpeed     float64 `json:"rifleSpeed" yaml:"rifleSpeed"`
	RifleInterval  float64 `json:"rifleInterval" yaml:"rifleInterval"`
	RifleAmmoMax   int     `json:"rifleAmmoMax" yaml:"rifleAmmoMax"`
	RifleReload    float64 `json:"rifleReload" yaml:"rifleReload"`
	RifleRoundTime float64 `json:"rifleRoundTime" yaml:"rifleRoundTime"`

	ScatterDamage   float64 `json:"scatterDamage" yaml:"scatterDamage"`
	ScatterPellets  int     `json:"scatterPellets" yaml:"scatterPellets"`
	ScatterSpread   float64 `json:"scatterSpread" yaml:"scatterSpread"`
	ScatterSpeed    float64 `json:"scatterSpeed" yaml:"scatterSpeed"`
	ScatterInterval float64 `json:"scatterInterval" yaml:"scatterInterval"`
	ScatterAmmoMax  int     `json:"scatterAmmoMax" yaml:"scatterAmmoMax"`
	ScatterReload   float64 `json:"scatterReload" yaml:"scatterReload"`

	ModeCooldown  float64 `json:"modeCooldown" yaml:"modeCooldown"`
	SwitchPenalty float64 `json:"switchPenalty" yaml:"switchPenalty"`

	DroneHealth       float64 `json:"droneHealth" yaml:"droneHealth"`
	DroneBattery      float64 `json:"droneBattery" yaml:"droneBattery"`
	DroneSpeed        float64 `json:"droneSpeed" yaml:"droneSpeed"`
	DroneDamage       float64 `json:"droneDamage" yaml:"droneDamage"`
	DroneShotSpeed    float64 `json:"droneShotSpeed" yaml:"droneShotSpeed"`
	DroneFireInterval float64 `json:"droneFireInterval" yaml:"droneFireInterval"`
	DroneAggroRange   float64 `json:"droneAggroRange" yaml:"droneAggroRange"`
	DroneRebuild      float64 `json:"droneRebuild" yaml:"droneRebuild"`
	DroneCooldown     float64 `json:"droneCooldown" yaml:"droneCooldown"`
}

// BruiserStats tunes the combo and charge melee kit.
type BruiserStats struct {
	ComboDamage   []float64 `json:"comboDamage" yaml:"comboDamage"`
	ComboWindow   float64   `json:"comboWindow" yaml:"comboWindow"`
	ComboReach    float64   `json:"comboReach" yaml:"comboReach"`
	ComboHalfArc  float64   `json:"comboHalfArc" yaml:"comboHalfArc"`
	ComboInterval float64   `json:"comboInterval" yaml:"comboInterval"`
	FinishKnock   float64   `json:"finishKnock" yaml:"finishKnock"`

	SlamMaxCharge float64 `json:"slamMaxCharge" yaml:"slamMaxCharge"`
	SlamHoldGrace float64 `json:"slamHoldGrace" yaml:"slamHoldGrace"`
	SlamMinDamage float64 `json:"slamMinDamage" yaml:"slamMinDamage"`
	SlamMaxDamage float64 `json:"slamMaxDamage" yaml:"slamMaxDamage"`
	SlamMinRange  float64 `json:"slamMinRange" yaml:"slamMinRange"`
	SlamMaxRange  float64 `json:"slamMaxRange" yaml:"slamMaxRange"`
	SlamMinWidth  float64 `json:"slamMinWidth" yaml:"slamMinWidth"`
	SlamMaxWidth  float64 `json:"slamMaxWidth" yaml:"slamMaxWidth"`
	SlamCooldown  float64 `json:"slamCooldown" yaml:"slamCooldown"`

	BashMaxCharge float64 `json:"bashMaxCharge" yaml:"bashMaxCharge"`
	BashHoldGrace float64 `json:"bashHoldGrace" yaml:"bashHoldGrace"`
	BashMinDamage float64 `json:"bashMinDamage" yaml:"bashMinDamage"`
	BashMaxDamage float64 `json:"bashMaxDamage" yaml:"bashMaxDamage"`
	BashReach     float64 `json:"bashReach" yaml:"bashReach"`
	BashMinKnock  float64 `json:"bashMinKnock" yaml:"bashMinKnock"`
	BashMaxKnock  float64 `json:"bashMaxKnock" yaml:"bashMaxKnock"`
	BashCooldown  float64 `json:"bashCooldown" yaml:"bashCooldown"`

	ChargeMoveFactor  float64 `json:"chargeMoveFactor" yaml:"chargeMoveFactor"`
	ChargeKnockResist float64 `json:"chargeKnockResist" yaml:"chargeKnockResist"`
}

// StrayStats tunes the fragile nine-lives kit.
type StrayStats struct {
	Lives         int     `json:"lives" yaml:"lives"`
	SwipeDamage   float64 `json:"swipeDamage" yaml:"swipeDamage"`
	SwipeReach    float64 `json:"swipeReach" yaml:"swipeReach"`
	SwipeHalfArc  float64 `json:"swipeHalfArc" yaml:"swipeHalfArc"`
	SwipeInterval float64 `json:"swipeInterval" yaml:"swipeInterval"`

	PounceMaxCharge float64 `json:"pounceMaxCharge" yaml:"pounceMaxCharge"`
	PounceHoldGrace float64 `json:"pounceHoldGrace" yaml:"pounceHoldGrace"`
	PounceMinSpeed  float64 `json:"pounceMinSpeed" yaml:"pounceMinSpeed"`
	PounceMaxSpeed  float64 `json:"pounceMaxSpeed" yaml:"pounceMaxSpeed"`
	PounceDuration  float64 `json:"pounceDuration" yaml:"pounceDuration"`
	PounceDamage    float64 `json:"pounceDamage" yaml:"pounceDamage"`
	PounceSlow      float64 `json:"pounceSlow" yaml:"pounceSlow"`
	PounceDisarm    float64 `json:"pounceDisarm" yaml:"pounceDisarm"`
	PounceSilence   float64 `json:"pounceSilence" yaml:"pounceSilence"`

	YowlRadius   float64 `json:"yowlRadius" yaml:"yowlRadius"`
	YowlKnock    float64 `json:"yowlKnock" yaml:"yowlKnock"`
	YowlFear     float64 `json:"yowlFear" yaml:"yowlFear"`
	YowlSlow     float64 `json:"yowlSlow" yaml:"yowlSlow"`
	YowlCooldown float64 `json:"yowlCooldown" yaml:"yowlCooldown"`

	MarkDelay      float64 `json:"markDelay" yaml:"markDelay"`
	MarkRadius     float64 `json:"markRadius" yaml:"markRadius"`
	MarkDamage     float64 `json:"markDamage" yaml:"markDamage"`
	MarkTrackSpeed float64 `json:"markTrackSpeed" yaml:"markTrackSpeed"`
	MarkCooldown   float64 `json:"markCooldown" yaml:"markCooldown"`

	ReviveInvincible float64 `json:"reviveInvincible" yaml:"reviveInvincible"`
}

// DefaultStatTables returns the stock balance numbers. The YAML stat file,
// when present, overrides these wholesale.
func DefaultStatTables() StatTables {
	return StatTables{
		Pyro: ArchetypeStats{
			MaxHealth: 120, Speed: 260, Mass: 1.1, Radius: 18,
			Pyro: PyroStats{
				HeatMax: 100, HeatPerSecond: 28, CoolPerSecond: 18, OverheatCoolPerSecond: 34,
				FlameDPS: 34, FlameReachMin: 90, FlameReachMax: 230, FlameBaseHalfAngle: 0.62,
				FlaskDamage: 18, FlaskRadius: 14, FlaskFlightTime: 0.8, FlaskCooldown: 5,
				PoolDuration: 6, PoolRadius: 62, PoolDPS: 16, PoolOwnerHealPS: 4,
				DetonateDamage: 30, DetonateKnockback: 380, DetonateCooldown: 1.2,
			},
		},
		Gunner: ArchetypeStats{
			MaxHealth: 100, Speed: 270, Mass: 1.0, Radius: 17,
			Gunner: GunnerStats{
				RifleDamage: 16, RifleSpeed: 760, RifleInterval: 0.55, RifleAmmoMax: 6,
				RifleReload: 2.4, RifleRoundTime: 1.1,
				ScatterDamage: 5, ScatterPellets: 5, ScatterSpread: 0.42, ScatterSpeed: 540,
				ScatterInterval: 0.22, ScatterAmmoMax: 18, ScatterReload: 3.2,
				ModeCooldown: 2.5, SwitchPenalty: 0.6,
				DroneHealth: 30, DroneBattery: 14, DroneSpeed: 320, DroneDamage: 6,
				DroneShotSpeed: 520, DroneFireInterval: 0.8, DroneAggroRange: 340,
				DroneRebuild: 6, DroneCooldown: 4,
			},
		},
		Bruiser: ArchetypeStats{
			MaxHealth: 150, Speed: 240, Mass: 1.5, Radius: 21,
			Bruiser: BruiserStats{
				ComboDamage: []float64{9, 11, 18}, ComboWindow: 1.1, ComboReach: 58,
				ComboHalfArc: 0.9, ComboInterval: 0.32, FinishKnock: 300,
				SlamMaxCharge: 1.6, SlamHoldGrace: 0.45,
				SlamMinDamage: 14, SlamMaxDamage: 42,
				SlamMinRange: 70, SlamMaxRange: 170,
				SlamMinWidth: 50, SlamMaxWidth: 120, SlamCooldown: 4,
				BashMaxCharge: 1.2, BashHoldGrace: 0.4,
				BashMinDamage: 10, BashMaxDamage: 26, BashReach: 84,
				BashMinKnock: 220, BashMaxKnock: 500, BashCooldown: 3,
				ChargeMoveFactor: 0.15, ChargeKnockResist: 0.6,
			},
		},
		Stray: ArchetypeStats{
			MaxHealth: 70, Speed: 320, Mass: 0.8, Radius: 15,
			Stray: StrayStats{
				Lives: 9, SwipeDamage: 7, SwipeReach: 46, SwipeHalfArc: 1.0, SwipeInterval: 0.24,
				PounceMaxCharge: 1.0, PounceHoldGrace: 0.35,
				PounceMinSpeed: 420, PounceMaxSpeed: 900, PounceDuration: 0.45,
				PounceDamage: 14, PounceSlow: 1.4, PounceDisarm: 1.0, PounceSilence: 0.8,
				YowlRadius: 130, YowlKnock: 420, YowlFear: 1.4, YowlSlow: 0.9, YowlCooldown: 7,
				MarkDelay: 1.5, MarkRadius: 120, MarkDamage: 38, MarkTrackSpeed: 80, MarkCooldown: 9,
				ReviveInvincible: 1.2,
			},
		},
	}
}

// LoadStatTables reads a YAML stat file and validates the result. Values
// start from the built-in defaults so partial files only override what they
// name.
func LoadStatTables(path string) (StatTables, error) {
	tables := DefaultStatTables()
	data, err := os.ReadFile(path)
	if err != nil {
		return tables, fmt.Errorf("stats: read %s: %w", path, err)
	}
	wrapper := struct {
		Archetypes *StatTables `yaml:"archetypes"`
	}{Archetypes: &tables}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return tables, fmt.Errorf("stats: unmarshal %s: %w", path, err)
	}
	if err := tables.Validate(); err != nil {
		return tables, fmt.Errorf("stats: validate %s: %w", path, err)
	}
	return tables, nil
}

// Validate rejects stat blocks that would break simulation invariants.
func (t StatTables) Validate() error {
	blocks := map[Archetype]ArchetypeStats{
		ArchetypePyro:    t.Pyro,
		ArchetypeGunner:  t.Gunner,
		ArchetypeBruiser: t.Bruiser,
		ArchetypeStray:   t.Stray,
	}
	for archetype, block := range blocks {
		if block.MaxHealth <= 0 {
			return fmt.Errorf("%s: maxHealth must be positive", archetype)
		}
		if block.Mass <= 0 {
			return fmt.Errorf("%s: mass must be positive", archetype)
		}
		if block.Radius <= 0 {
			return fmt.Errorf("%s: radius must be positive", archetype)
		}
		if block.Speed <= 0 {
			return fmt.Errorf("%s: speed must be positive", archetype)
		}
	}
	if t.Pyro.Pyro.HeatMax <= 0 {
		return fmt.Errorf("pyro: heatMax must be positive")
	}
	if t.Pyro.Pyro.FlameReachMax < t.Pyro.Pyro.FlameReachMin {
		return fmt.Errorf("pyro: flameReachMax below flameReachMin")
	}
	if t.Gunner.Gunner.RifleAmmoMax <= 0 || t.Gunner.Gunner.ScatterAmmoMax <= 0 {
		return fmt.Errorf("gunner: ammo pools must be positive")
	}
	if len(t.Bruiser.Bruiser.ComboDamage) != 3 {
		return fmt.Errorf("bruiser: comboDamage must list exactly 3 steps")
	}
	if t.Stray.Stray.Lives < 1 {
		return fmt.Errorf("stray: lives must be at least 1")
	}
	return nil
}
