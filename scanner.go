package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/smtp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultSchedulerBaseURL = "https://ttp.cbp.dhs.gov/schedulerapi"
	slotTimeFormat          = "2006-01-02T15:04"
	cutoffDateFormat        = "2006-01-02"
	defaultQueryLimit       = 5
)

// Scanner polls the TTP scheduler API for one configured location and
// notifies the configured recipient about appointments before the cutoff.
type Scanner struct {
	config       *Configuration
	logger       *logrus.Entry
	client       *http.Client
	baseURL      string
	locationName string
	earlierThan  time.Time
	notified     map[string]bool
	sendMail     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewScanner(config *Configuration, logger *logrus.Entry) *Scanner {
	// EarlierThan and SkipTimes are validated at startup.
	earlierThan, _ := time.Parse(cutoffDateFormat, config.Watch.EarlierThan)
	notified := map[string]bool{}
	for _, skip := range config.Watch.SkipTimes {
		notified[skip] = true
	}
	return &Scanner{
		config:      config,
		logger:      logger,
		client:      &http.Client{Timeout: 30 * time.Second},
		baseURL:     defaultSchedulerBaseURL,
		earlierThan: earlierThan,
		notified:    notified,
		sendMail:    smtp.SendMail,
	}
}

func (s *Scanner) makeRequest(url string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:88.0) Gecko/20100101 Firefox/88.0")
	return s.client.Do(req)
}

func (s *Scanner) fetchSlots() ([]SchedulerSlot, error) {
	url := fmt.Sprintf("%s/slots?orderBy=soonest&limit=%d&locationId=%d&minimum=1",
		s.baseURL, s.queryLimit(), s.config.Watch.LocationID)
	res, err := s.makeRequest(url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("slots endpoint returned status %d", res.StatusCode)
	}
	resBytes, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	var slots []SchedulerSlot
	if err := json.Unmarshal(resBytes, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *Scanner) fetchLocations() ([]SchedulerLocation, error) {
	url := s.baseURL + "/locations/"
	res, err := s.makeRequest(url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("locations endpoint returned status %d", res.StatusCode)
	}
	resBytes, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	var locations []SchedulerLocation
	if err := json.Unmarshal(resBytes, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// resolveLocation checks the configured location id against the live
// locations list and remembers the center name for notifications.
func (s *Scanner) resolveLocation() error {
	locations, err := s.fetchLocations()
	if err != nil {
		return err
	}
	for _, location := range locations {
		if location.ID == s.config.Watch.LocationID {
			s.locationName = strings.TrimSpace(location.Name)
			if s.locationName == "" {
				s.locationName = fmt.Sprintf("location %d", location.ID)
			}
			return nil
		}
	}
	return fmt.Errorf("the location id %d does not exist in the scheduler's location list (watch.locationId)",
		s.config.Watch.LocationID)
}

func (s *Scanner) queryLimit() int {
	if s.config.Watch.Limit > 0 {
		return s.config.Watch.Limit
	}
	return defaultQueryLimit
}

// filterSlots keeps slots starting strictly before the cutoff date,
// sorted ascending.
func (s *Scanner) filterSlots(slots []SchedulerSlot) []time.Time {
	var times []time.Time
	for _, slot := range slots {
		start, err := time.Parse(slotTimeFormat, slot.StartTimestamp)
		if err != nil {
			s.logger.WithError(err).Warn("skipping slot with unparseable startTimestamp: ", slot.StartTimestamp)
			continue
		}
		if start.Before(s.earlierThan) {
			times = append(times, start)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}

// scanOnce runs one poll cycle. Any failure is logged and the cycle is
// abandoned; the next cycle starts fresh.
func (s *Scanner) scanOnce() {
	s.logger.Info("Polling started at: " + time.Now().Local().Format(time.RFC850))
	slots, err := s.fetchSlots()
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch appointment slots")
		return
	}
	times := s.filterSlots(slots)
	if len(times) == 0 {
		s.logger.Info("No earlier appointments available.")
		return
	}
	var newTimes []time.Time
	skipped := 0
	for _, t := range times {
		if s.notified[t.Format(slotTimeFormat)] {
			skipped++
			continue
		}
		newTimes = append(newTimes, t)
	}
	if len(newTimes) == 0 {
		s.logger.Infof("All %d earlier times already notified. skipping.", skipped)
		return
	}
	s.logger.Infof("Found %d new earlier times (%d already notified)", len(newTimes), skipped)
	if err := s.notify(newTimes); err != nil {
		s.logger.WithError(err).Error("Failed to send notification email")
		return
	}
	if s.config.Watch.NotifyOnce {
		for _, t := range newTimes {
			s.notified[t.Format(slotTimeFormat)] = true
		}
	}
}
