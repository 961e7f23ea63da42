// Package constraintdoc decodes the wire constraint document (spec §6) into
// the internal/layout package's evaluation inputs. It performs only the
// structural decoding and a handful of semantic checks (layoutModel,
// default-constraint presence); it does not perform JSON-schema validation —
// that is explicitly out of scope (kaptinlin/jsonschema would be the natural
// fit, left unwired, see DESIGN.md).
package constraintdoc

import (
	"encoding/json"
	"fmt"

	"github.com/yourflock/roost/layoutengine/internal/layout"
)

// Document mirrors the wire constraint document shape: version 4, a dmapp id,
// the evaluation context (devices/groups/options), the constraint list, and
// the component set driving the current transaction.
type Document struct {
	Version       int               `json:"version"`
	DMAppID       string            `json:"dmapp"`
	ContextID     string            `json:"contextId"`
	LayoutModel   string            `json:"layoutModel"`
	PercentCoords bool              `json:"percentCoords"`
	ReduceFactor  float64           `json:"reduceFactor"`
	ReduceTries   int               `json:"reduceTries"`
	Devices       []wireDevice      `json:"devices"`
	Groups        []wireGroup       `json:"groups"`
	Constraints   []wireConstraint  `json:"constraints"`
	Components    []wireComponent   `json:"components"`
}

type wireRegion struct {
	ID        string  `json:"id"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Resizable bool    `json:"resizable"`
}

type wireDevice struct {
	ID                    string   `json:"id"`
	DisplayWidth          float64  `json:"displayWidth"`
	DisplayHeight         float64  `json:"displayHeight"`
	DPI                   float64  `json:"dpi"`
	ConcurrentAudio       int      `json:"concurrentAudio"`
	ConcurrentVideo       int      `json:"concurrentVideo"`
	Touch                 bool     `json:"touch"`
	Communal              bool     `json:"communal"`
	SupportedOrientations []string `json:"supportedOrientations"`
	Orientation           string   `json:"orientation"`
	GroupID               string   `json:"groupId"`
	Regions               []wireRegion `json:"regions"`
}

type wireGroup struct {
	ID        string   `json:"id"`
	DeviceIDs []string `json:"deviceIds"`
}

type wireSize struct {
	W    float64 `json:"w"`
	H    float64 `json:"h"`
	Unit string  `json:"unit"`
}

type wireConstraintConfig struct {
	Aspect                    string   `json:"aspect"`
	PrefSize                  wireSize `json:"prefSize"`
	MinSize                   wireSize `json:"minSize"`
	TargetRegions             []string `json:"targetRegions"`
	Priority                  int      `json:"priority"`
	Audio                     bool     `json:"audio"`
	Video                     bool     `json:"video"`
	TouchInteraction          bool     `json:"touchInteraction"`
	Margin                    wireSize `json:"margin"`
	Anchor                    []string `json:"anchor"`
	ComponentDependency       []string `json:"componentDependency"`
	ComponentDeviceDependency bool     `json:"componentDeviceDependency"`
}

type wireConstraint struct {
	ConstraintID string                 `json:"constraintId"`
	Personal     *wireConstraintConfig  `json:"personal"`
	Communal     *wireConstraintConfig  `json:"communal"`
}

type wirePriorityOverrides struct {
	Device  map[string]int `json:"device"`
	Group   map[string]int `json:"group"`
	Context *int           `json:"context"`
}

type wireComponent struct {
	ID                string                 `json:"id"`
	ConstraintID      string                 `json:"constraintId"`
	State             string                 `json:"state"`
	Visible           bool                   `json:"visible"`
	StartTime         *int64                 `json:"startTime"`
	StopTime          *int64                 `json:"stopTime"`
	PriorityOverrides *wirePriorityOverrides `json:"priorityOverrides"`
	PrefSizeOverride  *wireSize              `json:"prefSizeOverride"`
	Payload           map[string]interface{} `json:"payload"`
	Parameters        map[string]interface{} `json:"parameters"`
}

// Decode parses a constraint document body into the three inputs evaluate()
// needs. Array declaration order becomes each Component's InsertionIndex,
// the sorter's final tie-break (§4.3 rule 5).
func Decode(data []byte) (*layout.Context, *layout.ConstraintSet, map[string]*layout.Component, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, nil, fmt.Errorf("constraintdoc: invalid JSON: %w", err)
	}
	if doc.LayoutModel != "" && doc.LayoutModel != "dynamic" && doc.LayoutModel != "packer" {
		return nil, nil, nil, fmt.Errorf("constraintdoc: layoutModel %q out of scope (template layouts are a Non-goal)", doc.LayoutModel)
	}

	ctx := &layout.Context{
		ID:            doc.ContextID,
		DMAppID:       doc.DMAppID,
		PercentCoords: doc.PercentCoords,
		ReduceFactor:  doc.ReduceFactor,
		ReduceTries:   doc.ReduceTries,
	}
	for _, d := range doc.Devices {
		ctx.Devices = append(ctx.Devices, decodeDevice(d))
	}
	for _, g := range doc.Groups {
		ctx.Groups = append(ctx.Groups, layout.Group{ID: g.ID, DeviceIDs: g.DeviceIDs})
	}

	cs := &layout.ConstraintSet{}
	haveDefault := false
	for _, c := range doc.Constraints {
		if c.ConstraintID == "default" {
			haveDefault = true
		}
		cs.Constraints = append(cs.Constraints, layout.ConstraintRecord{
			ConstraintID: c.ConstraintID,
			Personal:     decodeConfig(c.Personal),
			Communal:     decodeConfig(c.Communal),
		})
	}
	if len(doc.Constraints) > 0 && !haveDefault {
		return nil, nil, nil, fmt.Errorf("constraintdoc: constraint list is missing the required %q record", "default")
	}

	comps := make(map[string]*layout.Component, len(doc.Components))
	for i, c := range doc.Components {
		comps[c.ID] = decodeComponent(c, i)
	}

	return ctx, cs, comps, nil
}

func decodeDevice(d wireDevice) layout.Device {
	dev := layout.Device{
		ID:              d.ID,
		DisplayW:        d.DisplayWidth,
		DisplayH:        d.DisplayHeight,
		DPI:             d.DPI,
		ConcurrentAudio: d.ConcurrentAudio,
		ConcurrentVideo: d.ConcurrentVideo,
		Touch:           d.Touch,
		Communal:        d.Communal,
		GroupID:         d.GroupID,
		Orientation:     layout.Orientation(d.Orientation),
	}
	for _, o := range d.SupportedOrientations {
		dev.SupportedOrientations = append(dev.SupportedOrientations, layout.Orientation(o))
	}
	for _, r := range d.Regions {
		dev.Regions = append(dev.Regions, layout.Region{ID: r.ID, W: r.Width, H: r.Height, Resizable: r.Resizable})
	}
	return dev
}

func decodeConfig(w *wireConstraintConfig) *layout.ConstraintConfig {
	if w == nil {
		return nil
	}
	cfg := &layout.ConstraintConfig{
		Aspect:                    w.Aspect,
		PrefSize:                  decodeRawSize(w.PrefSize),
		MinSize:                   decodeRawSize(w.MinSize),
		TargetRegions:             w.TargetRegions,
		Priority:                  w.Priority,
		Audio:                     w.Audio,
		Video:                     w.Video,
		TouchInteraction:          w.TouchInteraction,
		Margin:                    decodeRawSize(w.Margin),
		ComponentDependency:       w.ComponentDependency,
		ComponentDeviceDependency: w.ComponentDeviceDependency,
	}
	for _, a := range w.Anchor {
		cfg.Anchor = append(cfg.Anchor, layout.Anchor(a))
	}
	return cfg
}

func decodeRawSize(w wireSize) layout.RawSize {
	return layout.RawSize{W: w.W, H: w.H, Unit: layout.Unit(w.Unit)}
}

func decodeComponent(w wireComponent, index int) *layout.Component {
	c := &layout.Component{
		ID:             w.ID,
		ConstraintID:   w.ConstraintID,
		State:          layout.ComponentState(w.State),
		Visible:        w.Visible,
		StartTime:      w.StartTime,
		StopTime:       w.StopTime,
		Payload:        w.Payload,
		Parameters:     w.Parameters,
		InsertionIndex: index,
	}
	if w.PrefSizeOverride != nil {
		sz := layout.Size{W: w.PrefSizeOverride.W, H: w.PrefSizeOverride.H, Unit: layout.Unit(w.PrefSizeOverride.Unit)}
		c.PrefSizeOverride = &sz
	}
	if w.PriorityOverrides != nil {
		c.PriorityOverrides = layout.PriorityOverrides{
			Device:  w.PriorityOverrides.Device,
			Group:   w.PriorityOverrides.Group,
			Context: w.PriorityOverrides.Context,
		}
	}
	return c
}
