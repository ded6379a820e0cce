// Package hermes publishes discoveries to the Hermes message exchange.
package hermes

import (
	"fmt"

	"github.com/skyportal/skyportal/pkg/model"
	"github.com/skyportal/skyportal/pkg/tns"
)

const (
	TopicDiscovery = "hermes.discovery"
	TopicTest      = "hermes.test"
	dateFormat     = "2006-01-02T15:04:05.000000"
)

type Message struct {
	Topic     string `json:"topic"`
	Title     string `json:"title"`
	Submitter string `json:"submitter"`
	Authors   string `json:"authors"`
	Data      Data   `json:"data"`
}

type Data struct {
	Targets    []Target     `json:"targets"`
	Photometry []Photometry `json:"photometry"`
}

type Target struct {
	Name         string   `json:"name"`
	RA           float64  `json:"ra"`
	Dec          float64  `json:"dec"`
	NewDiscovery bool     `json:"new_discovery"`
	Redshift     *float64 `json:"redshift,omitempty"`
}

type Photometry struct {
	TargetName         string   `json:"target_name"`
	DateObs            string   `json:"date_obs"`
	Telescope          string   `json:"telescope"`
	Instrument         string   `json:"instrument"`
	Bandpass           string   `json:"bandpass"`
	Brightness         *float64 `json:"brightness,omitempty"`
	BrightnessError    *float64 `json:"brightness_error,omitempty"`
	BrightnessUnit     string   `json:"brightness_unit"`
	LimitingBrightness float64  `json:"limiting_brightness"`
}

type MessageParams struct {
	Service                *model.SharingService
	Submitter              *model.User
	Obj                    *model.Obj
	Photometry             []model.Photometry
	CustomPublishingString string
	DetectionThreshold     float64
}

// BuildMessage builds the discovery message of an object. Non-detections are sent with their
// limiting magnitude only.
func BuildMessage(params MessageParams) (*Message, error) {
	if len(params.Photometry) == 0 {
		return nil, fmt.Errorf("no photometry of %s to publish", params.Obj.ID)
	}

	topic := TopicDiscovery
	if params.Service.Testing {
		topic = TopicTest
	}

	photometry := make([]Photometry, len(params.Photometry))
	for i, p := range params.Photometry {
		instrument := fmt.Sprint(p.InstrumentID)
		if p.Instrument != nil {
			instrument = p.Instrument.Name
		}
		photometry[i] = Photometry{
			TargetName:         params.Obj.ID,
			DateObs:            model.MJDToTime(p.MJD).Format(dateFormat),
			Telescope:          instrument,
			Instrument:         instrument,
			Bandpass:           p.Filter,
			BrightnessUnit:     "AB mag",
			LimitingBrightness: p.LimitingMag(params.DetectionThreshold),
		}
		if p.IsDetection(params.DetectionThreshold) {
			mag, _ := p.Mag()
			magErr, _ := p.MagErr()
			photometry[i].Brightness = &mag
			photometry[i].BrightnessError = &magErr
		}
	}

	return &Message{
		Topic:     topic,
		Title:     fmt.Sprintf("%s discovery of %s", params.Service.Name, params.Obj.ID),
		Submitter: params.Submitter.FullName(),
		Authors:   tns.Reporter(params.Service, params.Submitter, params.CustomPublishingString),
		Data: Data{
			Targets: []Target{{
				Name:         params.Obj.ID,
				RA:           params.Obj.RA,
				Dec:          params.Obj.Dec,
				NewDiscovery: true,
				Redshift:     params.Obj.Redshift,
			}},
			Photometry: photometry,
		},
	}, nil
}
