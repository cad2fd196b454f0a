package notification

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gridpanel/gridpanel/config"
	"github.com/gridpanel/gridpanel/internal/request"
)

// SlackNotification posts an error to the configured Slack webhook.
func SlackNotification(err error) error {
	conf, confErr := config.Fetch()
	if confErr != nil {
		return confErr
	}

	data := json.RawMessage(fmt.Sprintf(`{
	"blocks": [
		{
			"type": "header",
			"text": {
				"type": "plain_text",
				"text": "Error From %s",
				"emoji": true
			}
		},
		{
			"type": "section",
			"fields": [
				{
					"type": "mrkdwn",
					"text": "*Error:*\n%v"
				}
			]
		},
		{
			"type": "section",
			"fields": [
				{
					"type": "mrkdwn",
					"text": "*Time:*\n%v"
				}
			]
		}
	]
}`, conf.ProjectName, err.Error(), time.Now().Format(time.RFC822)))

	payload, jsonErr := request.ToJsonReq(&data)
	if jsonErr != nil {
		return jsonErr
	}

	req, reqErr := http.NewRequest("POST", conf.Notification.Slack.WebhookUrl, payload)
	if reqErr != nil {
		return reqErr
	}

	var response map[string]interface{}
	if _, callErr := request.Call(req, &response); callErr != nil {
		return callErr
	}
	return nil
}

// NotifyError fans an error out to every configured channel. Notification
// failures are logged, never propagated; alerting must not take the caller
// down with it.
func NotifyError(systemError error) {
	log.Println(systemError)

	conf, err := config.Fetch()
	if err != nil {
		log.Println(err)
		return
	}

	if conf.Notification.Slack.WebhookUrl != "" {
		if err := SlackNotification(systemError); err != nil {
			log.Println(err)
		}
	}
}
