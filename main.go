package main

import (
	"encoding/json"
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	_ = godotenv.Load()

	var configFilePath string
	flag.StringVar(&configFilePath, "config-file", "./config.json", "path of the config.json file")

	flag.Parse()

	if strings.TrimSpace(configFilePath) == "" {
		handleError(errors.New("the value of -config-file needs to be a path to a valid config.json file"))
	}
	configFilePath = strings.TrimSpace(configFilePath)
	fileAsBytes, err := os.ReadFile(configFilePath)
	handleError(err)

	config := &Configuration{}
	err = json.Unmarshal(fileAsBytes, config)
	handleError(err)

	applyEnvOverrides(config)
	validateNotificationConfigs(config)
	validatePollingInterval(config)
	validateWatch(config)

	logger := logrus.WithField("component", "scanner")
	scanner := NewScanner(config, logger)
	handleError(scanner.resolveLocation())

	logger.Info("Watching location: ", scanner.locationName)
	logger.Info("Cutoff date: ", config.Watch.EarlierThan)
	logger.Info("Notifying: ", config.Watch.Recipient)
	logger.Info("SMTP sender: ", config.Notificationconfigs.SMTP.Email,
		" password: ", mask(config.Notificationconfigs.SMTP.Password))

	startScanning(scanner, config)
}

// applyEnvOverrides lets the SMTP credentials come from the environment
// (or a .env file) so they can stay out of config.json.
func applyEnvOverrides(config *Configuration) {
	if email := os.Getenv("SMTP_EMAIL"); email != "" {
		config.Notificationconfigs.SMTP.Email = email
	}
	if password := os.Getenv("SMTP_PASSWORD"); password != "" {
		config.Notificationconfigs.SMTP.Password = password
	}
}

func validateNotificationConfigs(config *Configuration) {
	// Only smtp support for now
	if strings.TrimSpace(config.Notificationconfigs.SMTP.Host) == "" {
		handleError(errors.New("the smtp host needs to be a valid value (notificationConfigs.smtp.host)"))
	}
	port, err := strconv.Atoi(strings.TrimSpace(config.Notificationconfigs.SMTP.Port))
	if err != nil || port <= 0 {
		handleError(errors.New("the smtp port needs to be a valid port number (notificationConfigs.smtp.port)"))
	}
	if strings.TrimSpace(config.Notificationconfigs.SMTP.Email) == "" {
		handleError(errors.New("the smtp email needs to be a valid email (notificationConfigs.smtp.email)"))
	}
	err = checkmail.ValidateFormat(config.Notificationconfigs.SMTP.Email)
	handleError(err)
	if strings.TrimSpace(config.Notificationconfigs.SMTP.Password) == "" {
		handleError(errors.New("the smtp password needs to be a valid string (notificationConfigs.smtp.password)"))
	}
}

func validatePollingInterval(config *Configuration) {
	pollingInterval, err := strconv.Atoi(strings.TrimSpace(config.Pollinginterval))
	if err != nil || pollingInterval <= 0 {
		handleError(errors.New("the polling interval needs to be a valid number of seconds (pollingInterval)"))
	}
}

func validateWatch(config *Configuration) {
	watch := &config.Watch
	if watch.LocationID <= 0 {
		handleError(errors.New("the location id needs to be a positive number (watch.locationId)"))
	}
	watch.EarlierThan = strings.TrimSpace(watch.EarlierThan)
	if _, err := time.Parse(cutoffDateFormat, watch.EarlierThan); err != nil {
		handleError(errors.New("the cutoff date needs to be in YYYY-MM-DD format (watch.earlierThan)"))
	}
	if watch.Limit < 0 {
		handleError(errors.New("the query limit needs to be a positive number (watch.limit)"))
	}
	if strings.TrimSpace(watch.Recipient) == "" {
		handleError(errors.New("a recipient email needs to be provided (watch.recipient)"))
	}
	err := checkmail.ValidateFormat(watch.Recipient)
	handleError(err)
	if strings.TrimSpace(watch.SMSRecipient) != "" {
		err = checkmail.ValidateFormat(strings.TrimSpace(watch.SMSRecipient))
		handleError(err)
	}
	for _, skip := range watch.SkipTimes {
		if _, err := time.Parse(slotTimeFormat, skip); err != nil {
			handleError(errors.New("skip times need to be in YYYY-MM-DDTHH:MM format (watch.skipTimes)"))
		}
	}
}

func startScanning(scanner *Scanner, config *Configuration) {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.Every(getPollingInterval(config)).Seconds().Do(scanner.scanOnce)
	scheduler.SingletonMode()
	scheduler.StartBlocking()
}

func getPollingInterval(config *Configuration) int {
	pollingInterval, _ := strconv.Atoi(strings.TrimSpace(config.Pollinginterval))
	return pollingInterval
}

func mask(s string) string {
	if len(s) <= 10 {
		return "****"
	}
	return s[:4] + "…" + s[len(s)-4:]
}

func handleError(err error) {
	if err != nil {
		panic(err.Error())
	}
}
