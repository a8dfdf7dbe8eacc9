package config

const (
	defaultDataDir    = "~/.local/share/clipforge"
	defaultStagingDir = "~/.local/share/clipforge/staging"
	defaultLogDir     = "~/.local/share/clipforge/logs"

	defaultScheduleTimezone = "Asia/Almaty"
	defaultScheduleDays     = 30
	defaultSubject          = "Crazy Cat Fails"

	defaultRendererTimeoutSeconds = 900
	defaultRendererMinFreeGiB     = 2

	defaultCategoryID          = "24"
	defaultPrivacyStatus       = "private"
	defaultUploaderTimezone    = "America/New_York"
	defaultSafetyWindowMinutes = 60
	defaultMaxAttempts         = 4
	defaultTokenURL            = "https://oauth2.googleapis.com/token"
	defaultUploadURL           = "https://www.googleapis.com/upload/youtube/v3/videos"

	defaultPollInterval = 300
	defaultBatchLimit   = 1

	defaultNtfyRequestTimeout = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

func defaultSlots() []string {
	return []string{"09:00", "15:00", "21:00"}
}

func defaultLines() []string {
	return []string{"Hook", "Setup", "Twist"}
}

func defaultScheduleTags() []string {
	return []string{"shorts", "cartoon", "comedy"}
}

func defaultUploaderTags() []string {
	return []string{"shorts"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Schedule: Schedule{
			Timezone:       defaultScheduleTimezone,
			Days:           defaultScheduleDays,
			Slots:          defaultSlots(),
			DefaultLines:   defaultLines(),
			DefaultTags:    defaultScheduleTags(),
			DefaultSubject: defaultSubject,
		},
		Renderer: Renderer{
			VideoCommand:     "clipforge-render",
			NarrationCommand: "clipforge-narrate",
			TimeoutSeconds:   defaultRendererTimeoutSeconds,
			MinFreeGiB:       defaultRendererMinFreeGiB,
		},
		Uploader: Uploader{
			CategoryID:          defaultCategoryID,
			PrivacyStatus:       defaultPrivacyStatus,
			DefaultTags:         defaultUploaderTags(),
			Timezone:            defaultUploaderTimezone,
			SafetyWindowMinutes: defaultSafetyWindowMinutes,
			MaxAttempts:         defaultMaxAttempts,
			TokenURL:            defaultTokenURL,
			UploadURL:           defaultUploadURL,
		},
		Workflow: Workflow{
			PollInterval: defaultPollInterval,
			BatchLimit:   defaultBatchLimit,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
