// Package event turns the NOTIFY_* environment variables CheckMK sets
// for a notification script into one validated alert event.
package event

import (
	"errors"
	"fmt"
)

// Kind distinguishes host notifications from service notifications.
type Kind string

const (
	KindHost    Kind = "HOST"
	KindService Kind = "SERVICE"
)

// Extraction failures. Both mean the invocation itself is malformed,
// so CheckMK must not retry it.
var (
	ErrMissingField = errors.New("missing required notification field")
	ErrInvalidKind  = errors.New("invalid notification kind")
)

// AlertEvent is one CheckMK notification, validated and ready for
// formatting. It is built once per invocation and never mutated.
type AlertEvent struct {
	Kind             Kind
	NotificationType string
	HostName         string

	HostState         string
	HostPreviousState string
	HostOutput        string

	// Service fields are set only when Kind == KindService.
	ServiceDescription   string
	ServiceState         string
	ServicePreviousState string
	ServiceOutput        string

	SiteName      string
	ShortDateTime string
}

// Environment variables of the CheckMK notification contract.
const (
	envWhat                 = "NOTIFY_WHAT"
	envNotificationType     = "NOTIFY_NOTIFICATIONTYPE"
	envHostName             = "NOTIFY_HOSTNAME"
	envHostState            = "NOTIFY_HOSTSHORTSTATE"
	envHostPreviousState    = "NOTIFY_PREVIOUSHOSTHARDSHORTSTATE"
	envHostOutput           = "NOTIFY_HOSTOUTPUT"
	envServiceDescription   = "NOTIFY_SERVICEDESC"
	envServiceState         = "NOTIFY_SERVICESHORTSTATE"
	envServicePreviousState = "NOTIFY_PREVIOUSSERVICEHARDSHORTSTATE"
	envServiceOutput        = "NOTIFY_SERVICEOUTPUT"
	envSite                 = "OMD_SITE"
	envShortDateTime        = "NOTIFY_SHORTDATETIME"
)

// FromEnv builds an AlertEvent from the environment snapshot exposed by
// getenv (usually os.Getenv). It fails on the first missing required
// field; free-text values are passed through unmodified, escaping is
// the formatter's concern.
func FromEnv(getenv func(string) string) (*AlertEvent, error) {
	kind := Kind(getenv(envWhat))
	switch kind {
	case KindHost, KindService:
	case "":
		return nil, fmt.Errorf("%w: %s", ErrMissingField, envWhat)
	default:
		return nil, fmt.Errorf("%w: %s=%q (want HOST or SERVICE)", ErrInvalidKind, envWhat, string(kind))
	}

	ev := &AlertEvent{
		Kind:              kind,
		NotificationType:  getenv(envNotificationType),
		HostName:          getenv(envHostName),
		HostState:         getenv(envHostState),
		HostPreviousState: getenv(envHostPreviousState),
		HostOutput:        getenv(envHostOutput),
		SiteName:          getenv(envSite),
		ShortDateTime:     getenv(envShortDateTime),
	}

	type field struct{ name, value string }

	required := []field{
		{envNotificationType, ev.NotificationType},
		{envHostName, ev.HostName},
	}

	if kind == KindService {
		ev.ServiceDescription = getenv(envServiceDescription)
		ev.ServiceState = getenv(envServiceState)
		ev.ServicePreviousState = getenv(envServicePreviousState)
		ev.ServiceOutput = getenv(envServiceOutput)
		required = append(required,
			field{envServiceDescription, ev.ServiceDescription},
			field{envServiceState, ev.ServiceState},
			field{envServiceOutput, ev.ServiceOutput},
		)
	} else {
		required = append(required,
			field{envHostState, ev.HostState},
			field{envHostOutput, ev.HostOutput},
		)
	}

	for _, f := range required {
		if f.value == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}

	return ev, nil
}

// State returns the short state the notification is about: the service
// state for service notifications, the host state otherwise.
func (e *AlertEvent) State() string {
	if e.Kind == KindService {
		return e.ServiceState
	}
	return e.HostState
}

// PreviousState returns the previous hard short state matching State.
func (e *AlertEvent) PreviousState() string {
	if e.Kind == KindService {
		return e.ServicePreviousState
	}
	return e.HostPreviousState
}

// Output returns the check output matching State.
func (e *AlertEvent) Output() string {
	if e.Kind == KindService {
		return e.ServiceOutput
	}
	return e.HostOutput
}
