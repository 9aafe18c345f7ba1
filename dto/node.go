package dto

type Node struct {
	Name             Text `json:"NAME"`
	Status           Text `json:"STATUS"`
	Roles            Text `json:"ROLES"`
	Age              Text `json:"AGE"`
	Version          Text `json:"VERSION"`
	InternalIP       Text `json:"INTERNAL-IP"`
	OSImage          Text `json:"OS-IMAGE"`
	KernelVersion    Text `json:"KERNEL-VERSION"`
	ContainerRuntime Text `json:"CONTAINER-RUNTIME"`
}
