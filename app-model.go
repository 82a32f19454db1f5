package main

type Configuration struct {
	Watch               Watch               `json:"watch"`
	Notificationconfigs Notificationconfigs `json:"notificationConfigs"`
	Pollinginterval     string              `json:"pollingInterval"`
}

type Watch struct {
	LocationID   int      `json:"locationId"`
	EarlierThan  string   `json:"earlierThan"`
	Limit        int      `json:"limit"`
	Recipient    string   `json:"recipient"`
	SMSRecipient string   `json:"smsRecipient"`
	NotifyOnce   bool     `json:"notifyOnce"`
	SkipTimes    []string `json:"skipTimes"`
}

type SMTP struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Notificationconfigs struct {
	SMTP SMTP `json:"smtp"`
}
