package dto

import treedto "hostnav/internal/modules/tree/dto"

type PluginInfo struct {
	Name         string
	Version      string
	Enabled      bool
	Binary       string
	Capabilities []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type ConnectInput struct {
	Node treedto.NodeOutput
	Mode string
}

type SessionPlanOutput struct {
	Connector string
	Mode      string
	NodeID    string
	Title     string
	Argv      []string
	Cwd       string
	Env       map[string]string
}
