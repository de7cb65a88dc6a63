// CamPass - Passcode-Gated Camera Sharing Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campass

/*
Package config loads CamPass configuration with Koanf v2.

Sources are layered, later ones winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml or /etc/campass/config.yaml
 3. Mapped environment variables (HTTP_PORT, BASE_PATH, LOG_LEVEL, ...)

Cameras and shares are lists and can only come from the YAML file:

	server:
	  base_path: /campass
	  trust_proxy: true
	security:
	  admin_token: 8c1f0b6e0b5d4c2f9a7e
	storage:
	  path: /data/campass
	cameras:
	  - id: cam.garage
	    name: Garage
	    snapshot_url: http://192.168.1.20/snapshot.jpg
	    mjpeg_url: http://192.168.1.20/video.mjpg
	shares:
	  - name: Garage
	    auth_kind: pin4
	    passcode: "4821"
	    cameras: [cam.garage]
	    session_duration: 7d
	    enabled: true

A share without a slug gets one derived from its name.
*/
package config
