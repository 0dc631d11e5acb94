package ability

// Kind identifies the effect category a parsed ability effect belongs to.
type Kind string

const (
	KindDamage   Kind = "DAMAGE"
	KindBuff     Kind = "BUFF"
	KindSlotBuff Kind = "SLOT_BUFF"
	KindGrant    Kind = "GRANT"
	KindSummon   Kind = "SUMMON"
	KindDraw     Kind = "DRAW"
	KindHeal     Kind = "HEAL"
	KindSouls    Kind = "SOULS"
	KindBanish   Kind = "BANISH"
)

// TargetGroup names who or what an effect applies to. Unit groups resolve to
// units, slot groups resolve to battlefield slots, player groups to players.
type TargetGroup string

const (
	// Unit groups
	TargetSelf             TargetGroup = "SELF"
	TargetEnemyUnit        TargetGroup = "ENEMY_UNIT"
	TargetEnemyBackRow     TargetGroup = "ENEMY_BACK_ROW"
	TargetEnemyFrontRow    TargetGroup = "ENEMY_FRONT_ROW"
	TargetFriendlyUnit     TargetGroup = "FRIENDLY_UNIT"
	TargetAllFriendlyUnits TargetGroup = "ALL_FRIENDLY_UNITS"
	TargetFrontRowUnits    TargetGroup = "FRONT_ROW_UNITS"
	TargetUnitsWithTag     TargetGroup = "UNITS_WITH_TAG"
	TargetUnitsWithKeyword TargetGroup = "UNITS_WITH_KEYWORD"
	TargetMultiTag         TargetGroup = "UNITS_WITH_EITHER_TAG"

	// Slot groups
	TargetThisSlot          TargetGroup = "THIS_SLOT"
	TargetOtherSlotInColumn TargetGroup = "OTHER_SLOT_IN_COLUMN"
	TargetOtherSlotsInRow   TargetGroup = "OTHER_SLOTS_IN_ROW"
	TargetAdjacentSlots     TargetGroup = "ADJACENT_SLOTS"
	TargetSlotsWithTag      TargetGroup = "SLOTS_WITH_TAG"
	TargetRandomSlot        TargetGroup = "RANDOM_SLOT"
	TargetRandomBackRowSlot TargetGroup = "RANDOM_BACK_ROW_SLOT"

	// Player groups
	TargetEnemyPlayer TargetGroup = "ENEMY_PLAYER"
	TargetOwnPlayer   TargetGroup = "OWN_PLAYER"
	TargetBothPlayers TargetGroup = "BOTH_PLAYERS"

	// Column resolves front slot, then back slot, then the enemy player.
	TargetColumn TargetGroup = "COLUMN"
)

// Mode selects how many eligible targets an effect hits.
type Mode string

const (
	ModeRandom   Mode = "RANDOM"
	ModeAll      Mode = "ALL"
	ModeTargeted Mode = "TARGETED"
)

// Effect is the structured result of parsing one recognized ability clause.
// Fields beyond Kind and Target are populated per category: Amount carries
// damage, heal, draw and soul counts; Attack/Health carry buff deltas.
type Effect struct {
	Kind   Kind
	Target TargetGroup
	Mode   Mode

	Amount    int
	Attack    int
	Health    int
	Temporary bool

	Tag     string
	Tags    []string
	Keyword string

	Token  string
	ToHand bool

	FromOpponentDeck bool
	ExcludeSelf      bool

	Raw string
}

// Miss records a clause that matched a category's keyword filter but none of
// its patterns. Misses are reported for logging and deliberately never fail
// resolution.
type Miss struct {
	Category string
	Text     string
}
