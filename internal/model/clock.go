package model

import "time"

type Clock func() time.Time
