package layout

import "github.com/google/uuid"

// MessageKind distinguishes the five push-notification shapes sent to
// devices as a layout changes (§6).
type MessageKind string

const (
	MessageCreate              MessageKind = "create"
	MessageUpdate              MessageKind = "update"
	MessageDestroy             MessageKind = "destroy"
	MessageComponentProperties MessageKind = "componentProperties"
	MessageLogicalRegionChange MessageKind = "logicalRegionChange"
)

// IDSource generates message ids. The default implementation uses random
// uuids; tests inject a deterministic source for reproducible fixtures.
type IDSource interface {
	NextID() string
}

// UUIDSource is the production IDSource.
type UUIDSource struct{}

// NextID returns a freshly generated random uuid string.
func (UUIDSource) NextID() string { return uuid.NewString() }

// Message is one push notification emitted by the differ (§6). Fields not
// relevant to Kind are left zero; callers should marshal with whatever wire
// encoding the transport layer uses, omitting empty fields.
type Message struct {
	ID           string
	Kind         MessageKind
	ContextID    string
	ComponentID  string
	DeviceID     string
	InstanceID   string
	X, Y, W, H   string // wire-formatted (px or percent), set for create/update
	ZDepth       int
	RegionID     string // set for logicalRegionChange
	TimestampMS  int64
	Payload      map[string]interface{}
	Parameters   map[string]interface{}
}

// NewCreateMessage builds a create message. Its timestamp is shifted 100ms
// earlier than a corresponding update would carry, so a
// device processing both in flight order never treats a create as stale
// against its own update (§6).
func NewCreateMessage(ids IDSource, ctxID string, pc *PlacedComponent, percentCoords bool, nowMS int64, payload, params map[string]interface{}) Message {
	x, y, w, h := AsWirePosition(pc, percentCoords)
	return Message{
		ID:          ids.NextID(),
		Kind:        MessageCreate,
		ContextID:   ctxID,
		ComponentID: pc.ComponentID,
		DeviceID:    pc.DeviceID,
		InstanceID:  pc.InstanceID,
		X:           x, Y: y, W: w, H: h,
		ZDepth:      pc.ZDepth,
		TimestampMS: nowMS - 100,
		Payload:     payload,
		Parameters:  params,
	}
}

// NewUpdateMessage builds an update message for a component whose placement
// changed position, size, or z-depth since the previous layout (§4.6, §6).
func NewUpdateMessage(ids IDSource, ctxID string, pc *PlacedComponent, percentCoords bool, nowMS int64) Message {
	x, y, w, h := AsWirePosition(pc, percentCoords)
	return Message{
		ID:          ids.NextID(),
		Kind:        MessageUpdate,
		ContextID:   ctxID,
		ComponentID: pc.ComponentID,
		DeviceID:    pc.DeviceID,
		InstanceID:  pc.InstanceID,
		X:           x, Y: y, W: w, H: h,
		ZDepth:      pc.ZDepth,
		TimestampMS: nowMS,
	}
}

// NewDestroyMessage builds a destroy message for a component that left the
// layout entirely (not merely hidden — see differ's carry-over rules).
func NewDestroyMessage(ids IDSource, ctxID, deviceID, componentID, instanceID string, nowMS int64) Message {
	return Message{
		ID:          ids.NextID(),
		Kind:        MessageDestroy,
		ContextID:   ctxID,
		ComponentID: componentID,
		DeviceID:    deviceID,
		InstanceID:  instanceID,
		TimestampMS: nowMS,
	}
}

// NewComponentPropertiesMessage carries a component's opaque payload/
// parameters to the device without touching its placement geometry.
func NewComponentPropertiesMessage(ids IDSource, ctxID string, pc *PlacedComponent, payload, params map[string]interface{}, nowMS int64) Message {
	return Message{
		ID:          ids.NextID(),
		Kind:        MessageComponentProperties,
		ContextID:   ctxID,
		ComponentID: pc.ComponentID,
		DeviceID:    pc.DeviceID,
		InstanceID:  pc.InstanceID,
		Payload:     payload,
		Parameters:  params,
		TimestampMS: nowMS,
	}
}

// NewLogicalRegionChangeMessage notifies a device that a component's host
// region id differs from the one it had in the previous layout; the differ
// sends it whether or not the pixel geometry also changed — a supplemented message
// kind not explicit in the wire format table but implied by §4.6's carry-over
// discussion of region identity.
func NewLogicalRegionChangeMessage(ids IDSource, ctxID string, pc *PlacedComponent, nowMS int64) Message {
	return Message{
		ID:          ids.NextID(),
		Kind:        MessageLogicalRegionChange,
		ContextID:   ctxID,
		ComponentID: pc.ComponentID,
		DeviceID:    pc.DeviceID,
		InstanceID:  pc.InstanceID,
		RegionID:    pc.RegionID,
		TimestampMS: nowMS,
	}
}
