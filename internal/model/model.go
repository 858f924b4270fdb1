package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&HuntInfo{},
	&HuntSession{},
	&Coin{},
	&TrackPoint{},
	&ModeSwitch{},
	&CoinEvent{},
	&EnginePerf{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// HuntInfo contains group information about the instance
type HuntInfo struct {
	gorm.Model
	GroupName        string `json:"groupName" gorm:"size:127"` // primary key
	GroupDescription string `json:"groupDescription" gorm:"size:255"`
	GroupWebsite     string `json:"groupURL" gorm:"size:255"`
}

func (*HuntInfo) TableName() string {
	return "hunt_infos"
}

// EnginePerf is the model for engine tick-loop performance metrics
type EnginePerf struct {
	Time                time.Time    `json:"time" gorm:"type:timestamptz;index:idx_time"`
	SessionID           uint         `json:"sessionId" gorm:"index:idx_engineperf_session_id"`
	Session             HuntSession  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	TickDurationMs      float32      `json:"tickDurationMs"`
	TicksPerSecond      float32      `json:"ticksPerSecond"`
	QueueLengths        QueueLengths `json:"queueLengths" gorm:"embedded;embeddedPrefix:queue_"`
	ModeSwitches        int          `json:"modeSwitches"`
	DisplayMode         string       `json:"displayMode" gorm:"size:16"`
	LastWriteDurationMs float32      `json:"lastWriteDurationMs"`
}

func (*EnginePerf) TableName() string {
	return "engine_perfs"
}

// QueueLengths is the model for the write queue lengths
type QueueLengths struct {
	TrackPoints  uint16 `json:"trackPoints"`
	CoinEvents   uint16 `json:"coinEvents"`
	ModeSwitches uint16 `json:"modeSwitches"`
	PerfSamples  uint16 `json:"perfSamples"`
}

////////////////////////
// RECORDING MODELS
////////////////////////

// HuntSession is the main model for a recorded treasure hunt session
type HuntSession struct {
	gorm.Model
	SessionUID             string       `json:"sessionUid" gorm:"size:64;index:idx_session_uid"`
	PlayerTag              string       `json:"playerTag" gorm:"size:64"`
	StartTime              time.Time    `json:"startTime" gorm:"type:timestamptz;index:idx_session_start"`
	EndTime                sql.NullTime `json:"endTime" gorm:"type:timestamptz"`
	BaselineHeadingDegrees float64      `json:"baselineHeadingDegrees"`
	CoinsCollected         int          `json:"coinsCollected"`
	AppVersion             string       `json:"appVersion" gorm:"size:64"`
	EngineVersion          string       `json:"engineVersion" gorm:"size:64"`
	DeviceModel            string       `json:"deviceModel" gorm:"size:127"`

	Coins        []Coin
	TrackPoints  []TrackPoint
	ModeSwitches []ModeSwitch
	CoinEvents   []CoinEvent
}

func (*HuntSession) TableName() string {
	return "hunt_sessions"
}

// Coin is a hunt target assigned during a session.
// Location is stored as an EPSG:3857 point; Settings holds the display
// tuning active when the target was set, as JSON.
type Coin struct {
	gorm.Model
	SessionID uint           `json:"sessionId" gorm:"index:idx_coin_session_id"`
	Session   HuntSession    `gorm:"foreignkey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TargetUID string         `json:"targetUid" gorm:"size:64;index:idx_coin_target_uid"`
	Name      string         `json:"name" gorm:"size:127"`
	Location  geom.Point     `json:"location"`
	Settings  datatypes.JSON `json:"settings" gorm:"type:jsonb;default:'{}'"`
	Collected bool           `json:"collected" gorm:"default:false"`
}

func (*Coin) TableName() string {
	return "coins"
}

// TrackPoint is one recorded observer GPS sample.
// Position is stored as an EPSG:3857 point so non-spatial databases can
// round-trip it as plain XY.
type TrackPoint struct {
	ID             uint        `json:"id" gorm:"primarykey;autoIncrement;"`
	Time           time.Time   `json:"time" gorm:"type:timestamptz;"`
	SessionID      uint        `json:"sessionId" gorm:"index:idx_trackpoint_session_id"`
	Session        HuntSession `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	Position       geom.Point  `json:"position"`
	FixAccuracy    float64     `json:"fixAccuracy"`
	HeadingDegrees float64     `json:"headingDegrees"`
	HeadingMethod  string      `json:"headingMethod" gorm:"size:16"`
	Mode           string      `json:"mode" gorm:"size:16"`
	DistanceMeters float64     `json:"distanceMeters" gorm:"default:-1"` // negative when no target
}

func (*TrackPoint) TableName() string {
	return "track_points"
}

// ModeSwitch records a placement-mode transition and what triggered it
type ModeSwitch struct {
	ID            uint        `json:"id" gorm:"primarykey;autoIncrement;"`
	Time          time.Time   `json:"time" gorm:"type:timestamptz;"`
	SessionID     uint        `json:"sessionId" gorm:"index:idx_modeswitch_session_id"`
	Session       HuntSession `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	FromMode      string      `json:"fromMode" gorm:"size:16"`
	ToMode        string      `json:"toMode" gorm:"size:16"`
	TrackingState string      `json:"trackingState" gorm:"size:16"`
	Displacement  float64     `json:"displacement"`
}

func (*ModeSwitch) TableName() string {
	return "mode_switches"
}

// CoinEvent is a persisted coin lifecycle event
type CoinEvent struct {
	ID             uint        `json:"id" gorm:"primarykey;autoIncrement;"`
	Time           time.Time   `json:"time" gorm:"type:timestamptz;index:idx_coinevent_time"`
	SessionID      uint        `json:"sessionId" gorm:"index:idx_coinevent_session_id"`
	Session        HuntSession `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	TargetUID      string      `json:"targetUid" gorm:"size:64"`
	Kind           string      `json:"kind" gorm:"size:32;index:idx_coinevent_kind"`
	DistanceMeters float64     `json:"distanceMeters" gorm:"default:-1"`
	Mode           string      `json:"mode" gorm:"size:16"`
	HeadingMethod  string      `json:"headingMethod" gorm:"size:16"`
}

func (*CoinEvent) TableName() string {
	return "coin_events"
}
